package submission

import (
	"leadintake/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Messages returned to the visitor.
const (
	SuccessMessage        = "Thank you for your interest! We will be in touch shortly."
	RequiredFieldsMessage = "Please fill in all required fields."
	SaveFailedMessage     = "Failed to save your information. Please try again."
	UnexpectedMessage     = "An unexpected error occurred. Please try again."
)

// Result is the outcome of a submission: either a success acknowledgement or
// a user-facing error message. It encodes to exactly one of
// {"success": "..."} or {"error": "..."}.
type Result struct {
	ok      bool
	message string
	kind    serrors.Kind
}

// Success returns a successful Result carrying message.
func Success(message string) Result {
	return Result{ok: true, message: message}
}

// Failure returns a failed Result. kind classifies the failure for transports
// and is never serialised.
func Failure(kind serrors.Kind, message string) Result {
	return Result{message: message, kind: kind}
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool { return r.ok }

// Message is the text to show the visitor.
func (r Result) Message() string { return r.message }

// Kind classifies a failed result. It is nil for successes.
func (r Result) Kind() serrors.Kind { return r.kind }

// IsZero reports whether r was never set.
func (r Result) IsZero() bool { return !r.ok && r.message == "" && r.kind == nil }

func (r Result) key() string {
	if r.ok {
		return "success"
	}

	return "error"
}

// Encode writes r to e.
func (r Result) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart(r.key())
	e.Str(r.message)
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	r.Encode(e)

	return append([]byte(nil), e.Bytes()...), nil
}

// UnmarshalJSON implements json.Unmarshaler. Decoded failures carry no kind.
func (r *Result) UnmarshalJSON(data []byte) error {
	var (
		out  Result
		seen int
	)
	if err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "success", "error":
			msg, err := d.Str()
			if err != nil {
				return errors.Wrapf(err, "decode %q", key)
			}
			out = Result{ok: string(key) == "success", message: msg}
			seen++
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode result")
	}
	if seen != 1 {
		return errors.Errorf("result must have exactly one of success or error, got %d", seen)
	}

	*r = out

	return nil
}
