package whatsapp

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Abraxas-365/wacloud/transport"
	"github.com/Abraxas-365/wacloud/validatex"
)

const businessProfileFields = "about,address,description,email,profile_picture_url,websites,vertical"

var profileSchema = validatex.Schema{Name: "whatsapp.business_profile"}

// BusinessProfile is the public profile of the business phone number
type BusinessProfile struct {
	MessagingProduct  string   `json:"messaging_product,omitempty"`
	About             string   `json:"about,omitempty" validate:"max=139"`
	Address           string   `json:"address,omitempty" validate:"max=256"`
	Description       string   `json:"description,omitempty" validate:"max=512"`
	Email             string   `json:"email,omitempty" validate:"omitempty,email,max=128"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Websites          []string `json:"websites,omitempty" validate:"max=2,dive,url"`
	Vertical          string   `json:"vertical,omitempty"`
}

// PhoneNumber is a number registered under the business account
type PhoneNumber struct {
	ID                     string `json:"id"`
	DisplayPhoneNumber     string `json:"display_phone_number"`
	VerifiedName           string `json:"verified_name"`
	QualityRating          string `json:"quality_rating"`
	CodeVerificationStatus string `json:"code_verification_status,omitempty"`
	PlatformType           string `json:"platform_type,omitempty"`
	Throughput             *struct {
		Level string `json:"level"`
	} `json:"throughput,omitempty"`
}

// GetBusinessProfile returns the profile of the configured phone number
func (c *Client) GetBusinessProfile(ctx context.Context) (*BusinessProfile, error) {
	var resp struct {
		Data []BusinessProfile `json:"data"`
	}
	err := c.do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.cfg.PhoneNumberID + "/whatsapp_business_profile",
		Query:  url.Values{"fields": {businessProfileFields}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return &BusinessProfile{}, nil
	}
	return &resp.Data[0], nil
}

// UpdateBusinessProfile updates the non-empty fields of profile
func (c *Client) UpdateBusinessProfile(ctx context.Context, profile BusinessProfile) error {
	profile.MessagingProduct = "whatsapp"
	if err := c.validator.Validate(profileSchema, &profile); err != nil {
		return err
	}

	var resp successResponse
	err := c.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.cfg.PhoneNumberID + "/whatsapp_business_profile",
		Body:   &profile,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return Registry.New(ErrEmptyResponse)
	}
	return nil
}

// ListPhoneNumbers returns the phone numbers of the business account
func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	waba, err := c.businessAccount()
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []PhoneNumber `json:"data"`
	}
	if err := c.do(ctx, transport.Request{Method: http.MethodGet, Path: waba + "/phone_numbers"}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
