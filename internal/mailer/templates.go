package mailer

import "fmt"

func verificationEmail(name, otp string) (subject, body string) {
	subject = "Verify your email"
	body = fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is:</p>
<h2 style="letter-spacing: 4px;">%s</h2>
<p>The code expires in 10 minutes. If you did not create an account, ignore this email.</p>`, name, otp)
	return subject, body
}

func passwordResetEmail(name, resetURL string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. The link below is valid for 10 minutes:</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, no action is needed.</p>`, name, resetURL)
	return subject, body
}

func employeeWelcomeEmail(name, employeeID, password string) (subject, body string) {
	subject = "Your staff account is ready"
	body = fmt.Sprintf(`<p>Hi %s,</p>
<p>A staff account has been created for you.</p>
<ul>
<li>Employee ID: <strong>%s</strong></li>
<li>Temporary password: <strong>%s</strong></li>
</ul>
<p>You will be asked to choose a new password on first login.</p>`, name, employeeID, password)
	return subject, body
}

func employeePasswordResetEmail(name, password string) (subject, body string) {
	subject = "Your password has been reset"
	body = fmt.Sprintf(`<p>Hi %s,</p>
<p>An administrator reset your password. Your temporary password is:</p>
<p><strong>%s</strong></p>
<p>You will be asked to choose a new password on next login.</p>`, name, password)
	return subject, body
}
