package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(desc string) Draft {
	return Draft{Description: desc, Location: &Location{Latitude: 12.97, Longitude: 77.59}}
}

func TestValidateOrder(t *testing.T) {
	err := Draft{Description: "   "}.Validate()
	assert.True(t, pkgerrors.Is(err, pkgerrors.DescriptionRequired), "got %v", err)

	err = Draft{Description: "broken tap"}.Validate()
	assert.True(t, pkgerrors.Is(err, pkgerrors.LocationRequired), "got %v", err)

	assert.NoError(t, located("broken tap").Validate())
}

func TestAssembleWithoutPhoto(t *testing.T) {
	payload, err := Assemble(located("  leaking pipe in block C  "))
	require.NoError(t, err)
	assert.Nil(t, payload.Photo)
	assert.Equal(t, RequestPart{Description: "leaking pipe in block C", Latitude: 12.97, Longitude: 77.59}, payload.Request)
}

func TestAssembleWithPhoto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0042.PNG")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	d := located("graffiti")
	d.PhotoRef = "file://" + path
	payload, err := Assemble(d)
	require.NoError(t, err)
	require.NotNil(t, payload.Photo)
	assert.Equal(t, "IMG_0042.PNG", payload.Photo.Name)
	assert.Equal(t, "image/png", payload.Photo.ContentType)
	assert.Equal(t, []byte("png-bytes"), payload.Photo.Data)
}

func TestAssembleUnreadablePhoto(t *testing.T) {
	d := located("graffiti")
	d.PhotoRef = filepath.Join(t.TempDir(), "missing.jpg")
	_, err := Assemble(d)
	assert.True(t, pkgerrors.Is(err, pkgerrors.PhotoUnreadable), "got %v", err)
}

func TestPhotoNaming(t *testing.T) {
	tests := []struct {
		ref      string
		name     string
		mimeType string
	}{
		{"/data/cache/shot.jpeg", "shot.jpeg", "image/jpeg"},
		{"file:///data/cache/shot.webp", "shot.webp", "image/webp"},
		{"/data/cache/camera-output", "photo.jpg", "image/jpeg"},
		{"/data/cache/weird.xyz", "weird.xyz", "image/jpeg"},
		{`C:\photos\lamp.gif`, "lamp.gif", "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name := PhotoName(tt.ref)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.mimeType, PhotoContentType(name))
		})
	}
}

func TestEncodeMultipart(t *testing.T) {
	payload := &Payload{
		Request: RequestPart{Description: "broken bench", Latitude: 1.5, Longitude: -2.25},
		Photo:   &PhotoPart{Name: "bench.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	}
	body, contentType, err := payload.Encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, params["boundary"])
	first, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "request", first.FormName())
	assert.Equal(t, "application/json", first.Header.Get("Content-Type"))
	var req RequestPart
	require.NoError(t, json.NewDecoder(first).Decode(&req))
	assert.Equal(t, payload.Request, req)

	second, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "photo", second.FormName())
	assert.Equal(t, "bench.png", second.FileName())
	assert.Equal(t, "image/png", second.Header.Get("Content-Type"))
	data, err := io.ReadAll(second)
	require.NoError(t, err)
	assert.Equal(t, payload.Photo.Data, data)

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncodeParsesAsForm(t *testing.T) {
	payload := &Payload{Request: RequestPart{Description: "no photo"}}
	body, contentType, err := payload.Encode()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/complaints/submit", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	assert.Contains(t, req.MultipartForm.Value["request"][0], `"description":"no photo"`)
	assert.Empty(t, req.MultipartForm.File["photo"])
}

type recordingSubmitter struct {
	calls   int
	payload *Payload
	err     error
}

func (r *recordingSubmitter) SubmitComplaint(_ context.Context, p *Payload) (*model.Complaint, error) {
	r.calls++
	r.payload = p
	if r.err != nil {
		return nil, r.err
	}
	return &model.Complaint{ID: 7, Description: p.Request.Description, Status: model.StatusPending}, nil
}

func TestFlowSubmitResetsOnSuccess(t *testing.T) {
	sub := &recordingSubmitter{}
	flow := NewFlow(sub, &StaticLocationService{Coords: Coordinates{Latitude: 10, Longitude: 20}}, nil)
	flow.SetDescription("lights out")
	_, err := flow.LocateDevice(context.Background())
	require.NoError(t, err)

	created, err := flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, Draft{}, flow.Draft)
	assert.Equal(t, 10.0, sub.payload.Request.Latitude)
}

func TestFlowSubmitKeepsDraftOnFailure(t *testing.T) {
	sub := &recordingSubmitter{err: pkgerrors.New(pkgerrors.ServerRejected).WithMessage("Upload failed")}
	flow := NewFlow(sub, nil, nil)
	flow.Draft = located("lights out")

	_, err := flow.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "lights out", flow.Draft.Description)
	assert.NotNil(t, flow.Draft.Location)
}

func TestFlowSubmitInvalidDraftSendsNothing(t *testing.T) {
	sub := &recordingSubmitter{}
	flow := NewFlow(sub, nil, nil)
	flow.SetDescription("no location yet")

	_, err := flow.Submit(context.Background())
	assert.True(t, pkgerrors.Is(err, pkgerrors.LocationRequired))
	assert.Zero(t, sub.calls)
	assert.True(t, strings.Contains(flow.Draft.Description, "no location"))
}

type failingGeocoder struct{}

func (failingGeocoder) ReverseGeocode(context.Context, Coordinates) (string, error) {
	return "", errors.New("offline")
}

type fixedGeocoder string

func (g fixedGeocoder) ReverseGeocode(context.Context, Coordinates) (string, error) {
	return string(g), nil
}
