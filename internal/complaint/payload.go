package complaint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	pkgerrors "campuscomplaint/pkg/errors"
)

const (
	requestPartName = "request"
	photoPartName   = "photo"

	defaultPhotoName = "photo.jpg"
	defaultPhotoType = "image/jpeg"
)

var extensionPattern = regexp.MustCompile(`\.(\w+)$`)

var photoTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
	"bmp":  "image/bmp",
}

// RequestPart is the JSON document sent in the "request" part.
type RequestPart struct {
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// PhotoPart is the optional binary "photo" part.
type PhotoPart struct {
	Name        string
	ContentType string
	Data        []byte
}

// Payload is a fully assembled complaint submission.
type Payload struct {
	Request RequestPart
	Photo   *PhotoPart
}

// Assemble validates the draft and builds its payload. Nothing is sent.
func Assemble(d Draft) (*Payload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	payload := &Payload{
		Request: RequestPart{
			Description: strings.TrimSpace(d.Description),
			Latitude:    d.Location.Latitude,
			Longitude:   d.Location.Longitude,
		},
	}
	if d.PhotoRef == "" {
		return payload, nil
	}

	data, err := os.ReadFile(localPath(d.PhotoRef))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.PhotoUnreadable, "read photo failed")
	}
	name := PhotoName(d.PhotoRef)
	payload.Photo = &PhotoPart{
		Name:        name,
		ContentType: PhotoContentType(name),
		Data:        data,
	}
	return payload, nil
}

// PhotoName is the last path segment of ref when it carries an extension, else photo.jpg.
func PhotoName(ref string) string {
	name := path.Base(strings.ReplaceAll(localPath(ref), "\\", "/"))
	if name == "." || name == "/" || !extensionPattern.MatchString(name) {
		return defaultPhotoName
	}
	return name
}

// PhotoContentType maps the file extension of name to an image MIME type, defaulting to JPEG.
func PhotoContentType(name string) string {
	match := extensionPattern.FindStringSubmatch(name)
	if match == nil {
		return defaultPhotoType
	}
	if contentType, ok := photoTypes[strings.ToLower(match[1])]; ok {
		return contentType
	}
	return defaultPhotoType
}

func localPath(ref string) string {
	if strings.HasPrefix(ref, "file://") {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			return u.Path
		}
		return strings.TrimPrefix(ref, "file://")
	}
	return ref
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the payload as multipart/form-data and returns the body with its content type.
func (p *Payload) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	requestJSON, err := json.Marshal(p.Request)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request part failed: %w", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, requestPartName))
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create request part failed: %w", err)
	}
	if _, err := part.Write(requestJSON); err != nil {
		return nil, "", fmt.Errorf("write request part failed: %w", err)
	}

	if p.Photo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, photoPartName, quoteEscaper.Replace(p.Photo.Name)))
		header.Set("Content-Type", p.Photo.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create photo part failed: %w", err)
		}
		if _, err := part.Write(p.Photo.Data); err != nil {
			return nil, "", fmt.Errorf("write photo part failed: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer failed: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
