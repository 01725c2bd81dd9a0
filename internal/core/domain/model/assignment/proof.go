package assignment

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"fulfillment/internal/pkg/errs"
)

// ProofType names the kind of evidence accepted at delivery completion.
type ProofType string

const (
	ProofTypeOTP       ProofType = "OTP"
	ProofTypeSignature ProofType = "SIGNATURE"
	ProofTypePhoto     ProofType = "PHOTO"
)

// Validate checks that the proof type is one of the accepted kinds.
func (t ProofType) Validate() error {
	switch t {
	case ProofTypeOTP, ProofTypeSignature, ProofTypePhoto:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("proof type",
		fmt.Errorf("%q is not a valid proof type", string(t)))
}

// Proof is the proof-of-delivery record attached to an assignment: the OTP
// secret generated at claim time, or the signature/photo reference captured
// at the door, plus the verified flag gating the DELIVERED transition.
type Proof struct {
	proofType ProofType
	secret    string
	reference string
	verified  bool
}

// NewOTPProof creates an unverified OTP proof with a freshly generated secret.
func NewOTPProof() (Proof, error) {
	secret, err := generateOTP()
	if err != nil {
		return Proof{}, err
	}
	return Proof{proofType: ProofTypeOTP, secret: secret}, nil
}

// RestoreProof reconstructs a proof record from persistence.
func RestoreProof(proofType ProofType, secret, reference string, verified bool) (Proof, error) {
	if err := proofType.Validate(); err != nil {
		return Proof{}, err
	}
	return Proof{proofType: proofType, secret: secret, reference: reference, verified: verified}, nil
}

// Type returns the kind of evidence this proof expects.
func (p Proof) Type() ProofType {
	return p.proofType
}

// Secret returns the stored OTP secret. Shared with the customer, never the driver.
func (p Proof) Secret() string {
	return p.secret
}

// Reference returns the captured signature/photo reference, if any.
func (p Proof) Reference() string {
	return p.reference
}

// Verified reports whether the proof has been successfully verified.
func (p Proof) Verified() bool {
	return p.verified
}

// Verify checks submitted evidence against the proof and returns the updated,
// verified record. An OTP must match the stored secret exactly (compared in
// constant time); a signature or photo requires a non-empty capture reference.
// Verification failure returns a precondition error and leaves the proof as is.
func (p Proof) Verify(submitted ProofType, value string) (Proof, error) {
	if err := submitted.Validate(); err != nil {
		return Proof{}, err
	}

	switch submitted {
	case ProofTypeOTP:
		if subtle.ConstantTimeCompare([]byte(value), []byte(p.secret)) != 1 {
			return Proof{}, errs.NewPreconditionFailedError("verify proof of delivery", "OTP mismatch")
		}
	case ProofTypeSignature, ProofTypePhoto:
		if value == "" {
			return Proof{}, errs.NewValueIsRequiredError("proof reference")
		}
		p.reference = value
	}

	p.proofType = submitted
	p.verified = true
	return p, nil
}

// otpLength is the number of digits in a generated one-time code.
const otpLength = 6

func generateOTP() (string, error) {
	max := big.NewInt(1)
	for range otpLength {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
