// Package codec wraps image decoding and encoding behind the [Codec] interface.
//
// Decoding turns raw bytes into a [Surface] (a decoded pixel buffer that must be released after use).
// Encoding turns a [Surface] into the single output target, JPEG at [Quality] 0.8.
//
// Accepted inputs are limited to [AcceptedTypes]: JPEG, PNG and GIF through the standard library decoders,
// TIFF and BMP through golang.org/x/image. Failures wrap [shared.ErrDecode] or [shared.ErrEncode] so callers
// can attribute a failure to the right stage.
package codec
