package metadata

import (
	"fmt"
)

type AssetCode struct {
	init string
	seq  int
}

const Init string = "AST"

// GenerateCode renders the tenant-scoped business code, e.g. "AST-00042".
func (a *AssetCode) GenerateCode() string {
	return fmt.Sprintf("%s-%05d", a.init, a.seq)
}

// Barcode returns the machine-readable payload for the asset label.
// Rendering the actual barcode image is done by an external collaborator.
func (a *AssetCode) Barcode() string {
	return a.GenerateCode()
}

// QRImagePath returns where the QR image for this code is expected to live.
func (a *AssetCode) QRImagePath() string {
	return "qrcodes/" + a.GenerateCode() + ".png"
}

func NewAssetCode(sequence int) AssetCode {
	var code AssetCode

	code.init = Init
	code.seq = sequence

	return code
}
