package models

// CredentialsMessage письмо с учётными данными новому пользователю.
// Передаётся через очередь уведомлений и не сохраняется.
type CredentialsMessage struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
	LoginURL string `json:"login_url"`
}
