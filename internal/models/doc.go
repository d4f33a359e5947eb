// Package models defines the domain entities of the squash conversion pipeline.
//
//   - [InputFile] : a raster image submitted for conversion (name, size, declared MIME type, bytes)
//   - [ConversionResult] : the immutable record of one successful conversion
//
// [ConversionResult] implements [Model]; all fields are unexported and read through methods so a result
// cannot change after construction. Size-savings helpers ([ConversionResult.SavedBytes],
// [ConversionResult.PercentSaved]) report growth truthfully as negative savings.
package models
