package settings

import "errors"

// ErrNoSettingsService is returned when the view has no settings service.
var ErrNoSettingsService = errors.New("settings service is not available")
