package llm

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"

	"github.com/ocrtools/cardscan/constants"
)

// MaxVisionMB caps the image size attached to a vision request.
const MaxVisionMB = 16

// LowScoreThreshold is the heuristic score under which the card photo is
// attached to the provider request so the multimodal model can read the
// image directly.
const LowScoreThreshold = 60

// ShouldAttachImage decides whether the request should carry the card photo
// as a data URL.
func ShouldAttachImage(req ExtractRequest) (attach bool, dataURL, mimeType string) {
	attach = req.FilePath != "" &&
		constants.IsImageExt(filepath.Ext(req.FilePath)) &&
		req.PrepScore < LowScoreThreshold
	if !attach {
		return false, "", ""
	}

	if st, err := os.Stat(req.FilePath); err != nil || st.Size() > int64(MaxVisionMB)*1024*1024 {
		return false, "", ""
	}

	u, mt, err := readAsDataURL(req.FilePath)
	if err != nil {
		return false, "", ""
	}
	return true, u, mt
}

func readAsDataURL(path string) (string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	mt := mime.TypeByExtension("." + ext)
	if mt == "" {
		switch ext {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		case "png":
			mt = "image/png"
		default:
			mt = "application/octet-stream"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b), mt, nil
}
