// Package preview1 implements the wasi_snapshot_preview1 subset a frame
// guest needs to start and run without real operating system services.
//
// The layer is deliberately shallow:
//
//   - fd_write forwards descriptors 1 and 2 to a line sink and discards
//     everything else; it never fails
//   - fd_read and fd_readdir report end of stream
//   - args and environment come from fixed blocks built at session start
//   - stat calls return zero-filled records, path_open returns OpenHandle
//   - lifecycle calls (close, seek, sync, advise, ...) succeed as no-ops
//   - proc_exit stops the guest with its code
//
// There are no preopened directories: fd_prestat_get reports badf, which is
// how guests detect the end of the preopen list.
//
// Every read or write of guest memory goes through a memory.View; a result
// pointer that falls outside memory yields ErrnoFault.
package preview1
