package dto

type UpdateSettingsRequest struct {
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	ReminderTime         *string `json:"reminder_time" validate:"omitempty,reminder_time"`
}

func (r UpdateSettingsRequest) Validate() error {
	return GetValidator().Struct(r)
}
