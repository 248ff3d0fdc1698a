// Package win32 is the Windows backend: shell window queries, click-through
// overlay windows, a layered-window compositor, the UI message loop and the
// login autostart entry. Importing it for side effects registers the
// provider. On other systems the package is empty.
package win32
