package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email dispatch. The auth core only
// calls it and reacts to success or failure; delivery details live here.
type EmailService interface {
	SendVerificationEmail(toEmail, toName, token string) error
	SendWelcomeEmail(toEmail, toName string) error
	SendPasswordResetEmail(toEmail, toName, token string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for links embedded in emails
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendVerificationEmail sends an email with a verification link/token
func (s *EmailServiceImpl) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := fmt.Sprintf("%s/students/auth/verify?token=%s", s.config.BaseURL, token)

	// Without SMTP credentials, log the token instead of sending (development)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP credentials not configured - verification email not sent. Use the URL above for testing.")
		return nil
	}

	subject := "Verify Your Email Address - JKUSA Portal"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to the JKUSA Portal!</h2>
				<p>Hello %s,</p>
				<p>Thank you for registering. To complete your registration, please verify your email address by clicking the button below:</p>

				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #0a7d36; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
				</div>

				<p>This verification link will expire in 24 hours.</p>

				<p>If you did not register for a JKUSA Portal account, please ignore this email.</p>

				<p>Best regards,<br>The JKUSA Team</p>
			</div>
		</body>
		</html>
	`, toName, verificationURL)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendWelcomeEmail sends a welcome email to a newly verified student
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("toName", toName).
			Msg("SMTP credentials not configured - welcome email not sent.")
		return nil
	}

	subject := "Welcome to the JKUSA Portal - Your Account is Active"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to the JKUSA Portal!</h2>
				<p>Hello %s,</p>
				<p>Your email has been verified and your account is now active. You can now log in and access all student-union services.</p>

				<p>Thank you for joining!</p>

				<p>Best regards,<br>The JKUSA Team</p>
			</div>
		</body>
		</html>
	`, toName)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendPasswordResetEmail sends an email with a password reset link/token
func (s *EmailServiceImpl) SendPasswordResetEmail(toEmail, toName, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.BaseURL, token)

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("resetURL", resetURL).
			Msg("SMTP credentials not configured - password reset email not sent. Use the URL above for testing.")
		return nil
	}

	subject := "Password Reset Request - JKUSA Portal"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Password Reset</h2>
				<p>Hello %s,</p>
				<p>We received a request to reset your password. Click the button below to choose a new one:</p>

				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #0a7d36; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
				</div>

				<p>This link will expire in 1 hour. If you did not request a password reset, you can safely ignore this email.</p>

				<p>Best regards,<br>The JKUSA Team</p>
			</div>
		</body>
		</html>
	`, toName, resetURL)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = toEmail
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to create SMTP client")
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err = client.Mail(s.config.FromEmail); err != nil {
			return fmt.Errorf("failed to set sender: %w", err)
		}
		if err = client.Rcpt(toEmail); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("failed to get data writer: %w", err)
		}
		if _, err = w.Write([]byte(message)); err != nil {
			return fmt.Errorf("failed to write email message: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("failed to close data writer: %w", err)
		}

		return nil
	}

	err := smtp.SendMail(
		serverAddress,
		auth,
		s.config.FromEmail,
		[]string{toEmail},
		[]byte(message),
	)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
