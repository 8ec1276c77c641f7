package whatsapp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestUploadMedia(t *testing.T) {
	g, srv := newGraph(t)
	g.on("POST /v23.0/PHONE/media", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "whatsapp", r.FormValue("messaging_product"))
		assert.Equal(t, "image/png", r.FormValue("type"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

		io.WriteString(w, `{"id":"MEDIA_9"}`)
	})

	id, err := newClient(t, srv).UploadMedia(context.Background(), whatsapp.Upload{
		Filename: "logo.png",
		MimeType: "image/png",
		Data:     []byte{0x89, 'P', 'N', 'G'},
	})

	require.NoError(t, err)
	assert.Equal(t, "MEDIA_9", id)
}

func TestUploadMedia_Validation(t *testing.T) {
	g, srv := newGraph(t)
	c := newClient(t, srv)

	_, err := c.UploadMedia(context.Background(), whatsapp.Upload{MimeType: "image/png"})
	assert.True(t, errx.IsCode(err, whatsapp.ErrMissingContent))

	_, err = c.UploadMedia(context.Background(), whatsapp.Upload{Data: []byte("x")})
	v, ok := errx.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "mime_type", v.Field)

	assert.Zero(t, g.count("POST /v23.0/PHONE/media"))
}

func TestDownloadMedia(t *testing.T) {
	g, srv := newGraph(t)
	g.on("GET /v23.0/MEDIA_1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"MEDIA_1","url":"`+srvURL(r)+`/files/MEDIA_1","mime_type":"audio/ogg","file_size":5}`)
	})
	g.on("GET /files/MEDIA_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		io.WriteString(w, "OggS!")
	})

	data, info, err := newClient(t, srv).DownloadMedia(context.Background(), "MEDIA_1")

	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", info.MimeType)
	assert.Equal(t, []byte("OggS!"), data)
}

func TestDeleteMedia(t *testing.T) {
	g, srv := newGraph(t)
	g.on("DELETE /v23.0/MEDIA_1", reply(`{"success":true}`))

	c := newClient(t, srv)
	require.NoError(t, c.DeleteMedia(context.Background(), "MEDIA_1"))

	err := c.DeleteMedia(context.Background(), "")
	assert.True(t, errx.IsKind(err, errx.KindValidation))
}

func srvURL(r *http.Request) string {
	return "http://" + r.Host
}

func TestBusinessProfile(t *testing.T) {
	g, srv := newGraph(t)
	g.on("GET /v23.0/PHONE/whatsapp_business_profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("fields"), "about")
		io.WriteString(w, `{"data":[{"about":"Abierto 9-18","email":"hola@tienda.mx","websites":["https://tienda.mx"]}]}`)
	})
	g.on("POST /v23.0/PHONE/whatsapp_business_profile", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "whatsapp", body["messaging_product"])
		assert.Equal(t, "Nuevo horario", body["about"])
		assert.NotContains(t, body, "address")
		io.WriteString(w, `{"success":true}`)
	})

	c := newClient(t, srv)
	ctx := context.Background()

	profile, err := c.GetBusinessProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hola@tienda.mx", profile.Email)

	require.NoError(t, c.UpdateBusinessProfile(ctx, whatsapp.BusinessProfile{About: "Nuevo horario"}))

	err = c.UpdateBusinessProfile(ctx, whatsapp.BusinessProfile{Email: "not-an-email"})
	v, ok := errx.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "email", v.Field)
	assert.Equal(t, 1, g.count("POST /v23.0/PHONE/whatsapp_business_profile"))
}

func TestListPhoneNumbers(t *testing.T) {
	g, srv := newGraph(t)
	g.on("GET /v23.0/WABA/phone_numbers", reply(`{"data":[{"id":"PHONE","display_phone_number":"+1 555-000-1111","verified_name":"Tienda","quality_rating":"GREEN"}]}`))

	numbers, err := newClient(t, srv).ListPhoneNumbers(context.Background())

	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, "GREEN", numbers[0].QualityRating)
}
