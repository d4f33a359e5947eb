package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Conversion errors
	ErrDecode = fmt.Errorf("decode failed")
	ErrEncode = fmt.Errorf("encode failed")

	// Export errors
	ErrArchiveBuild = fmt.Errorf("archive build failed")
	ErrExport       = fmt.Errorf("export failed")
	ErrBusy         = fmt.Errorf("operation already in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
