package curve

import "github.com/fd1az/nftswap-engine/internal/apperror"

// ByName resolves a curve variant from its configuration name.
func ByName(name string) (Curve, error) {
	switch name {
	case "linear":
		return NewLinear(), nil
	case "exponential":
		return NewExponential(), nil
	default:
		return nil, apperror.Validation(apperror.CodeNotFound, "unknown curve: "+name)
	}
}

// Names lists the curve variants the engine ships.
func Names() []string {
	return []string{"linear", "exponential"}
}
