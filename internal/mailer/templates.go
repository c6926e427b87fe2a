package mailer

import (
	"fmt"
	"time"
)

func SignupOTP(appName, to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your OTP for %s Signup", appName),
		Body:    fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, int(ttl.Minutes())),
	}
}

func PasswordResetOTP(appName, to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s password reset code", appName),
		Body: fmt.Sprintf(
			"Forgot your password? Use the code %s to set a new one. It expires in %d minutes.\n\n"+
				"If you didn't request a reset, please ignore this email.",
			code, int(ttl.Minutes())),
	}
}
