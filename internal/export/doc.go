// Package export turns converted images, or the archive of all of them, into saved files.
//
// Every export follows the same handle lifecycle:
//  1. a [HandleProvider] materializes the bytes as a transient [Handle] (a temp file for [TempFileProvider])
//  2. a [Trigger] delivers the handle under its suggested filename ([SaveTrigger] copies it into a directory)
//  3. the handle is released, on every path, including a failing trigger
//
// [Gateway] ties that lifecycle to the [repositories.ResultStore]: single exports attach their handle to the
// store entry while it is live, and bulk exports build the archive from a store snapshot.
package export
