package button

import "errors"

// Failure taxonomy. None of these is fatal to the widget; callers test for
// them with errors.Is and decide how loudly to log.
var (
	// ErrOpen means the asset store is unavailable or rejected its schema.
	// The widget degrades to memory-only mode.
	ErrOpen = errors.New("asset store could not be opened")

	// ErrDuplicate means an asset with the same dedup key is already stored.
	// It is treated as success.
	ErrDuplicate = errors.New("asset already stored")

	// ErrStore is a transaction or backend failure during insert or list.
	ErrStore = errors.New("asset store failure")

	// ErrPicker means the file picker could not be shown or read the selection.
	ErrPicker = errors.New("file picker failure")

	// ErrEmptySelection means the user dismissed the picker without choosing a file.
	ErrEmptySelection = errors.New("no file selected")
)
