package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// catalogExtensions are the catalog file formats the open dialog offers.
var catalogExtensions = []string{".json", ".toml"}

// CatalogDialog asks for a catalog file.
type CatalogDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewCatalogDialog creates a new catalog file dialog.
func NewCatalogDialog(window fyne.Window, callback func(string), logger *slog.Logger) *CatalogDialog {
	return &CatalogDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the dialog.
func (d *CatalogDialog) Show() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("catalog dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		path := reader.URI().Path()
		_ = reader.Close()

		if d.callback != nil {
			d.callback(path)
		}
	}, d.window)
	open.SetFilter(storage.NewExtensionFileFilter(catalogExtensions))
	open.Show()
}

// FolderDialog asks for a music folder to scan.
type FolderDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFolderDialog creates a new folder dialog.
func NewFolderDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FolderDialog {
	return &FolderDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the folder dialog.
func (d *FolderDialog) Show() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			return
		}
		if uri == nil {
			return // User cancelled
		}
		if d.callback != nil {
			d.callback(uri.Path())
		}
	}, d.window)
}
