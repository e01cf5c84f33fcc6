package domain

// Notification is the payload handed to the notification dispatcher after a
// lead has been saved.
type Notification struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	InterestedTraining string `json:"interestedTraining"`
	// NotificationEmail is the operator address that should receive the alert.
	NotificationEmail string `json:"notificationEmail"`
}
