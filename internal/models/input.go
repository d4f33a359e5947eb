package models

// InputFile is a raster image submitted by the user. It is read once per conversion and never retained.
type InputFile struct {
	Name     string // Base filename including extension
	Size     int64  // Declared byte size
	MIMEType string // Declared MIME type, e.g. image/png
	Data     []byte // Raw bytes
}

// NewInputFile builds an InputFile from raw bytes, deriving Size from len(data).
func NewInputFile(name, mimeType string, data []byte) InputFile {
	return InputFile{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: mimeType,
		Data:     data,
	}
}
