package owner

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInitData = errors.New("invalid init data")
)

// InitHeader carries the mini-app launch parameters on every request.
const InitHeader = "X-Telegram-Init-Data"

// ParseInitData extracts the launch parameters from a mini-app init data
// query string and returns the user's id as the owner id. Only the
// structure is checked; the hash parameter is not verified.
func ParseInitData(raw string) (initdata.InitData, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return initdata.InitData{}, "", ErrUnauthorized
	}

	data, err := initdata.Parse(raw)
	if err != nil {
		// Some clients encode the user object twice.
		decoded, uerr := url.QueryUnescape(raw)
		if uerr != nil || decoded == raw {
			return initdata.InitData{}, "", ErrInvalidInitData
		}
		if data, err = initdata.Parse(decoded); err != nil {
			return initdata.InitData{}, "", ErrInvalidInitData
		}
	}
	if data.User.ID <= 0 {
		return initdata.InitData{}, "", ErrInvalidInitData
	}
	return data, strconv.FormatInt(data.User.ID, 10), nil
}

// NormalizeID turns a JSON number or string id into the stable string form
// used as owner_id.
func NormalizeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrInvalidInitData
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", ErrInvalidInitData
		}
		s = strings.TrimSpace(s)
		if s == "" || len(s) > 64 {
			return "", ErrInvalidInitData
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", ErrInvalidInitData
	}
	if _, err := n.Int64(); err != nil {
		return "", ErrInvalidInitData
	}
	return n.String(), nil
}
