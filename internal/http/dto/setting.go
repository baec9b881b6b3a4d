package dto

type UpsertSettingRequest struct {
	Provider    string `json:"provider" binding:"required"`
	SettingType string `json:"settingType" binding:"required"`
	Value       string `json:"value" binding:"required"`
}
