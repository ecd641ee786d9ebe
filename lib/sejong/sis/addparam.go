package sis

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// AddParam is the context object the academic system expects on every api
// call. Field order is significant, it is serialized exactly in this order.
type AddParam struct {
	RunIntgUsrNo  string `json:"_runIntgUsrNo"`
	RunPgLoginDt  string `json:"_runPgLoginDt"`
	RunningSejong string `json:"_runningSejong"`
}

// EmptyAddParam is the bootstrap context, it only unlocks initUserInfo.
func EmptyAddParam() AddParam {
	return AddParam{}
}

// formEscape escapes like application/x-www-form-urlencoded encoders on the
// server side do: '*' is kept and '~' is escaped, url.QueryEscape does the
// opposite for both.
func formEscape(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "%2A", "*")
	return strings.ReplaceAll(escaped, "~", "%7E")
}

// EncodeAddParam serializes `p` as compact json, form escapes it and
// encodes the result with padded standard base64.
func EncodeAddParam(p AddParam) (string, error) {
	buff := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buff)
	enc.SetEscapeHTML(false)
	err := enc.Encode(p)
	if err != nil {
		return "", err
	}
	payload := strings.TrimSuffix(buff.String(), "\n")
	return base64.StdEncoding.EncodeToString([]byte(formEscape(payload))), nil
}

// DecodeAddParam reverses EncodeAddParam.
func DecodeAddParam(encoded string) (AddParam, error) {
	escaped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return AddParam{}, fmt.Errorf("decode base64: %w", err)
	}
	payload, err := url.QueryUnescape(string(escaped))
	if err != nil {
		return AddParam{}, fmt.Errorf("unescape: %w", err)
	}
	var p AddParam
	err = json.Unmarshal([]byte(payload), &p)
	if err != nil {
		return AddParam{}, fmt.Errorf("unmarshal: %w", err)
	}
	return p, nil
}

// DecodeAddParamJson returns the json text carried by an encoded addParam.
func DecodeAddParamJson(encoded string) (string, error) {
	escaped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return url.QueryUnescape(string(escaped))
}
