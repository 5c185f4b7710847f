package dto

type TwoFactorSetupOutput struct {
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backupCodes"`
	QRCode      string   `json:"qrCode"`
}

type TwoFactorVerifyInput struct {
	Code string `json:"code"`
}
