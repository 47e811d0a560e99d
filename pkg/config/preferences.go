package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"formatlink/pkg/errors"
)

// Preference keys kept in the store by `config set`. Each one shadows the
// config file value and is itself shadowed by its environment variable.
const (
	PrefFormat        = "format"
	PrefNotify        = "notify"
	PrefPromptMessage = "prompt_message"
)

var prefEnv = map[string]string{
	PrefFormat:        "FORMATLINK_FORMAT",
	PrefNotify:        "FORMATLINK_NOTIFY",
	PrefPromptMessage: "",
}

// PreferenceKeys lists the keys accepted by ValidatePreference, sorted.
func PreferenceKeys() []string {
	keys := make([]string, 0, len(prefEnv))
	for k := range prefEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckPreferenceKey rejects keys that are not preferences.
func CheckPreferenceKey(key string) error {
	if _, ok := prefEnv[key]; !ok {
		return errors.NewWithSuggestion(errors.ExitCodeInvalidArgument,
			fmt.Sprintf("unknown preference '%s'", key),
			"Valid keys: "+strings.Join(PreferenceKeys(), ", "))
	}
	return nil
}

// ValidatePreference checks key and normalises value for storage.
func ValidatePreference(key, value string) (string, error) {
	if err := CheckPreferenceKey(key); err != nil {
		return "", err
	}

	value = strings.TrimSpace(value)
	switch key {
	case PrefFormat:
		if value == "" {
			return "", errors.InvalidArgument(key, "must not be empty")
		}
	case PrefNotify:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", errors.InvalidArgument(key, "must be true or false")
		}
		value = strconv.FormatBool(b)
	}
	return value, nil
}

// ApplyPreferences overlays stored preferences onto cfg. Unknown keys and
// values that no longer parse are skipped.
func ApplyPreferences(cfg *Config, prefs map[string]string) {
	for key, raw := range prefs {
		env, ok := prefEnv[key]
		if !ok {
			continue
		}
		if env != "" && os.Getenv(env) != "" {
			continue
		}
		value, err := ValidatePreference(key, raw)
		if err != nil {
			continue
		}
		switch key {
		case PrefFormat:
			cfg.Format = value
		case PrefNotify:
			cfg.Notify = value == "true"
		case PrefPromptMessage:
			cfg.PromptMessage = value
		}
	}
}
