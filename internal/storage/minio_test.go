package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dataroom/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{}, want: "endpoint"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000"}, want: "credentials"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, want: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestResponseParams(t *testing.T) {
	inline := responseParams(PresignOptions{ContentType: "application/pdf"})
	assert.Equal(t, "inline", inline.Get("response-content-disposition"))
	assert.Equal(t, "application/pdf", inline.Get("response-content-type"))

	download := responseParams(PresignOptions{DownloadName: "term sheet.pdf"})
	assert.Equal(t, `attachment; filename="term sheet.pdf"`, download.Get("response-content-disposition"))
	assert.Empty(t, download.Get("response-content-type"))
}
