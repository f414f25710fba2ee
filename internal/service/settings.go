package service

import "github.com/mmcdole/ytdown/internal/domain"

// SettingsSource hands out the current settings snapshot. Services call
// Current at the point of use so a save is picked up by the next operation.
type SettingsSource interface {
	Current() domain.Settings
}
