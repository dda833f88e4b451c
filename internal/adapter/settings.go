package adapter

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

const (
	owningApplicationSettingKeyConstant          = "otp_app"
	privDirectorySettingKeyConstant              = "priv"
	adapterNameSettingKeyConstant                = "adapter"
	poolSizeSettingKeyConstant                   = "pool_size"
	settingsDecoderCreationErrorTemplateConstant = "unable to build settings decoder: %w"
	settingsDecodeErrorTemplateConstant          = "unable to decode repository settings: %w"
	settingsDecoderTagNameConstant               = "mapstructure"
	owningApplicationMissingMessageConstant      = "repository settings are missing the required otp_app entry"
)

// Settings holds the key-value configuration of a repository.
type Settings map[string]any

// OwningApplication returns the required otp_app entry naming the application that owns the repository.
func (settings Settings) OwningApplication() (string, error) {
	owningApplication := settings.stringValue(owningApplicationSettingKeyConstant)
	if len(owningApplication) == 0 {
		return "", errors.New(owningApplicationMissingMessageConstant)
	}
	return owningApplication, nil
}

// PrivDirectory returns the explicit priv directory override when one is configured.
func (settings Settings) PrivDirectory() (string, bool) {
	privDirectory := settings.stringValue(privDirectorySettingKeyConstant)
	return privDirectory, len(privDirectory) > 0
}

// AdapterName returns the configured storage adapter name when one is present.
func (settings Settings) AdapterName() (string, bool) {
	adapterName := settings.stringValue(adapterNameSettingKeyConstant)
	return adapterName, len(adapterName) > 0
}

// PoolSize returns the configured connection pool size, falling back to the supplied default.
func (settings Settings) PoolSize(defaultPoolSize int) int {
	rawValue, exists := settings[poolSizeSettingKeyConstant]
	if !exists {
		return defaultPoolSize
	}
	switch typedValue := rawValue.(type) {
	case int:
		if typedValue > 0 {
			return typedValue
		}
	case int64:
		if typedValue > 0 {
			return int(typedValue)
		}
	case float64:
		if typedValue > 0 {
			return int(typedValue)
		}
	}
	return defaultPoolSize
}

// Decode populates target from the settings map using mapstructure tags.
func (settings Settings) Decode(target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          settingsDecoderTagNameConstant,
		Result:           target,
		WeaklyTypedInput: true,
	})
	if decoderError != nil {
		return fmt.Errorf(settingsDecoderCreationErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(map[string]any(settings)); decodeError != nil {
		return fmt.Errorf(settingsDecodeErrorTemplateConstant, decodeError)
	}
	return nil
}

func (settings Settings) stringValue(settingKey string) string {
	rawValue, exists := settings[settingKey]
	if !exists {
		return ""
	}
	stringValue, isString := rawValue.(string)
	if !isString {
		return ""
	}
	return strings.TrimSpace(stringValue)
}
