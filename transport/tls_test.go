package transport

import (
	"crypto/tls"
	"testing"
)

func TestTLSConfig_Build(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantNil bool
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantNil: true},
		{name: "zero value", cfg: &TLSConfig{}, wantNil: true},
		{name: "skip verify", cfg: &TLSConfig{SkipVerify: true}},
		{name: "server name", cfg: &TLSConfig{ServerName: "api.vimeo.com"}},
		{name: "bad CA PEM", cfg: &TLSConfig{CAPEM: []byte("not a certificate")}, wantErr: true},
		{name: "missing CA file", cfg: &TLSConfig{CAFile: "/nonexistent/ca.pem"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Build()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != tt.wantNil {
				t.Fatalf("expected nil=%v, got %v", tt.wantNil, got)
			}
			if got != nil && got.MinVersion != tls.VersionTLS12 {
				t.Errorf("expected TLS 1.2 minimum, got %d", got.MinVersion)
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	if err := (&TLSConfig{CertFile: "cert.pem"}).Validate(); err == nil {
		t.Error("expected an error when key_file is missing")
	}
	if err := (&TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
