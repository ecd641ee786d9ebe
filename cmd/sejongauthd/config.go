package main

import (
	configlibsql "sejongauth/lib/configutil/libsql"
	"sejongauth/lib/sejong"
)

type Config struct {
	Port int `json:"port"`
	// AccessToken is required as a bearer token on every call when set.
	AccessToken string `json:"access_token"`
	Verbose     bool   `json:"verbose"`
	// ConcurrentSecondary runs the academic system flow alongside the
	// classic reading portal flow.
	ConcurrentSecondary bool `json:"concurrent_secondary"`
	// Snapshots enables the snapshot store when set.
	Snapshots *configlibsql.Struct `json:"snapshots"`
	Sejong    sejong.Config        `json:"sejong"`
}

func defaultConfig() Config {
	return Config{
		Port:   8111,
		Sejong: sejong.DefaultConfig(),
	}
}
