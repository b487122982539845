package textmessages

// User is the account a credentials text is addressed to.
type User struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
}

// RouteSMSValue lets a User be passed directly as a recipient.
func (u User) RouteSMSValue() string { return u.PhoneNumber }

// RouteNotificationForSMS lets a User receive channel notifications.
func (u User) RouteNotificationForSMS() string { return u.PhoneNumber }

// Receipt is a completed sale.
type Receipt struct {
	ID            int64  `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}
