// Package tasks runs batches of image conversions with real-time progress reporting.
//
// # Conversion
//
// [ConvertFile] drives one [models.InputFile] through a [codec.Codec]: decode into a surface, encode the surface,
// and build a [models.ConversionResult]. The decoded surface is released on every exit path.
//
// # Batches
//
// [BatchConverter.ProcessFiles] accepts a batch of inputs and:
//   - drops files whose MIME type is not in [codec.AcceptedTypes] (recorded, never an error)
//   - converts the rest concurrently, bounded by [BatchOpts.Workers] (0 means one goroutine per file)
//     and optionally throttled by [BatchOpts.DispatchRate]
//   - collects results by submission index, so the batch keeps input order even when files finish out of order
//   - appends the converted slice to the [ResultAppender] once every file has settled
//
// A failing file is skipped and reported in [BatchResult.Skipped]; it never aborts its batch.
// Batches do not lock each other out, so a later, faster batch may append before an earlier, slower one.
// [BatchConverter.Converting] stays true until every outstanding batch has settled.
//
// # Progress Reporting
//
// Progress is sent on an optional channel using select with default, so a slow consumer loses updates instead of
// stalling conversions.
//
// # Inputs
//
// [LoadInputs] expands files and directories into [models.InputFile] values whose MIME type is sniffed from
// content (github.com/gabriel-vasile/mimetype).
package tasks
