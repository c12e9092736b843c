/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  Config{port: 8080, dbPath: "quizbox.db"},
		},
		{
			name:    "port too low",
			cfg:     Config{port: 0, dbPath: "quizbox.db"},
			wantErr: true,
		},
		{
			name:    "port too high",
			cfg:     Config{port: 70000, dbPath: "quizbox.db"},
			wantErr: true,
		},
		{
			name:    "cert without key",
			cfg:     Config{port: 8080, dbPath: "quizbox.db", tlsCert: "cert.pem"},
			wantErr: true,
		},
		{
			name:    "key without cert",
			cfg:     Config{port: 8080, dbPath: "quizbox.db", tlsKey: "key.pem"},
			wantErr: true,
		},
		{
			name: "cert and key together",
			cfg:  Config{port: 8080, dbPath: "quizbox.db", tlsCert: "cert.pem", tlsKey: "key.pem"},
		},
		{
			name:    "missing db path",
			cfg:     Config{port: 8080},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	plain := Config{}
	if plain.scheme() != "http" {
		t.Errorf("expected http, got %s", plain.scheme())
	}

	tls := Config{tlsCert: "cert.pem", tlsKey: "key.pem"}
	if tls.scheme() != "https" {
		t.Errorf("expected https, got %s", tls.scheme())
	}
}
