package bookly

import "fmt"

// verificationEmailBody builds the account verification message sent at signup
func verificationEmailBody(link string) (subject, html string) {
	subject = "Verify Your email"
	html = fmt.Sprintf(`<h1>Verify your Email</h1>
<p>Please click this <a href="%s">link</a> to verify your email</p>`, link)
	return subject, html
}

// passwordResetEmailBody builds the password reset message
func passwordResetEmailBody(link string) (subject, html string) {
	subject = "Reset Your Password"
	html = fmt.Sprintf(`<h1>Reset Your Password</h1>
<p>Please click this <a href="%s">link</a> to Reset Your Password</p>`, link)
	return subject, html
}
