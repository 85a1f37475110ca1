package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	"partyhaus/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	EndpointURL string
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "http"
// posts to the configured mail endpoint, "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		sesConfig := config.SES
		if config.SES.InsecureSkipVerify {
			log.Printf("[MAILER] WARNING: TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		client := ses.NewFromConfig(awsCfg)
		return &sesMailer{
			client:      client,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "http":
		if config.EndpointURL == "" {
			return nil, fmt.Errorf("http mailer requires an endpoint url")
		}
		return &httpMailer{
			endpoint:    config.EndpointURL,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			client:      &http.Client{Timeout: 10 * time.Second},
		}, nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] Unknown email provider %q, using noop", config.Provider)
		return &noopMailer{}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
}

func (s *sesMailer) Send(to, subject, html, text string) (string, error) {
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	ctx := context.Background()
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send email via SES: %w", err)
	}
	return aws.ToString(result.MessageId), nil
}

type httpMailer struct {
	endpoint    string
	fromAddress string
	fromName    string
	client      *http.Client
}

type httpSendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

type httpSendResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

func (m *httpMailer) Send(to, subject, html, text string) (string, error) {
	from := m.fromAddress
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}
	body, err := json.Marshal(httpSendRequest{
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to mail endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read mail endpoint response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mail endpoint returned status %d: %s", resp.StatusCode, string(raw))
	}
	var parsed httpSendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode mail endpoint response: %w", err)
	}
	if !parsed.Success {
		return "", fmt.Errorf("mail endpoint rejected message: %s", parsed.Error)
	}
	return parsed.ID, nil
}

type noopMailer struct{}

func (n *noopMailer) Send(to, subject, html, text string) (string, error) {
	log.Println("[MAILER] Email would be sent (noop)", "to", to, "subject", subject)
	return "noop-" + uuid.NewString(), nil
}
