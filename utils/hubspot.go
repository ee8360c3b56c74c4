package utils

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tgaisser/ocb/models"

	"github.com/go-resty/resty/v2"
)

// Contact property names carrying the semicolon-joined course lists.
const (
	HubspotEnrollmentProperty = "online_courses_enrollment"
	HubspotCompletionProperty = "online_courses_completed"
)

// ErrContactNotFound is returned when the CRM has no contact for the email.
var ErrContactNotFound = errors.New("hubspot contact not found")

// HubspotClient talks to the HubSpot CRM. All course-sync callers run after the
// HTTP response has been sent and only log failures.
type HubspotClient struct {
	client      *resty.Client
	token       string
	createUrl   string
	completeUrl string
	retrieveUrl string
}

// NewHubspotClient builds a client from explicit settings.
func NewHubspotClient(token, createUrl, completeUrl, retrieveUrl string) *HubspotClient {
	return &HubspotClient{
		client:      resty.New().SetTimeout(15 * time.Second),
		token:       token,
		createUrl:   createUrl,
		completeUrl: completeUrl,
		retrieveUrl: retrieveUrl,
	}
}

type hubspotContact struct {
	Properties map[string]string `json:"properties"`
}

// GetCourses returns the course keys stored on the contact under the given
// property, split out of the semicolon-joined list. ErrContactNotFound when the
// CRM does not know the email.
func (h *HubspotClient) GetCourses(email, property string) ([]string, error) {
	var contact hubspotContact
	resp, err := h.client.R().
		SetAuthToken(h.token).
		SetQueryParam("idProperty", "email").
		SetQueryParam("properties", property).
		SetResult(&contact).
		Get(fmt.Sprintf("%s/%s", strings.TrimRight(h.retrieveUrl, "/"), email))
	if err != nil {
		return nil, fmt.Errorf("hubspot contact lookup failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrContactNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hubspot contact lookup returned status %d", resp.StatusCode())
	}

	return SplitCourseList(contact.Properties[property]), nil
}

// SplitCourseList breaks a semicolon-joined course list into its keys. The bare
// ";" sentinel (an explicitly cleared list) and empty segments yield nothing.
func SplitCourseList(list string) []string {
	courses := []string{}
	for _, part := range strings.Split(list, ";") {
		if part = strings.TrimSpace(part); part != "" {
			courses = append(courses, part)
		}
	}
	return courses
}

// JoinCourseList is the inverse of SplitCourseList. An empty set serializes to
// the ";" sentinel so a cleared list is distinguishable from a never-set one.
func JoinCourseList(courses []string) string {
	if len(courses) == 0 {
		return ";"
	}
	return strings.Join(courses, ";")
}

func (h *HubspotClient) setCourseList(baseUrl, email, property, list string) error {
	resp, err := h.client.R().
		SetAuthToken(h.token).
		SetQueryParam("idProperty", "email").
		SetBody(hubspotContact{Properties: map[string]string{property: list}}).
		Patch(fmt.Sprintf("%s/%s", strings.TrimRight(baseUrl, "/"), email))
	if err != nil {
		return fmt.Errorf("hubspot contact update failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return ErrContactNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("hubspot contact update returned status %d", resp.StatusCode())
	}
	return nil
}

// SetUserEnrollment adds or removes a course key on the contact's enrollment
// list. Adding an already-present key is a no-op so the sync can be retried.
func (h *HubspotClient) SetUserEnrollment(email, courseKey string, enrolled bool) error {
	if courseKey == "" {
		return nil
	}
	current, err := h.GetCourses(email, HubspotEnrollmentProperty)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(current)+1)
	present := false
	for _, key := range current {
		if key == courseKey {
			present = true
			if !enrolled {
				continue
			}
		}
		updated = append(updated, key)
	}
	if enrolled {
		if present {
			return nil
		}
		updated = append(updated, courseKey)
	} else if !present {
		return nil
	}

	return h.setCourseList(h.retrieveUrl, email, HubspotEnrollmentProperty, JoinCourseList(updated))
}

// SetUserCourseCompletion appends a course key to the contact's completed list.
func (h *HubspotClient) SetUserCourseCompletion(email, courseKey string) error {
	if courseKey == "" {
		return nil
	}
	current, err := h.GetCourses(email, HubspotCompletionProperty)
	if err != nil {
		return err
	}
	for _, key := range current {
		if key == courseKey {
			return nil
		}
	}
	return h.setCourseList(h.completeUrl, email, HubspotCompletionProperty, JoinCourseList(append(current, courseKey)))
}

// ContactSubmission is a form submission creating or updating a CRM contact.
type ContactSubmission struct {
	Email     string
	FirstName string
	LastName  string
	Hutk      string
	IpAddress string
	PageUrl   string
	Utm       *models.UtmInfo
}

// SubmitContact posts a form-encoded contact to the forms endpoint, carrying the
// tracking cookie and caller ip in hs_context.
func (h *HubspotClient) SubmitContact(sub ContactSubmission) error {
	form := map[string]string{
		"email":      sub.Email,
		"firstname":  sub.FirstName,
		"lastname":   sub.LastName,
		"hs_context": fmt.Sprintf(`{"hutk":"%s","ipAddress":"%s","pageUrl":"%s"}`, sub.Hutk, sub.IpAddress, sub.PageUrl),
	}
	if u := sub.Utm; u != nil {
		form["utm_source"] = u.Source
		form["utm_medium"] = u.Medium
		form["utm_content"] = u.Content
		form["utm_campaign"] = u.Campaign
		form["utm_term"] = u.Term
	}

	resp, err := h.client.R().
		SetFormData(form).
		Post(h.createUrl)
	if err != nil {
		return fmt.Errorf("hubspot form submission failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("hubspot form submission returned status %d", resp.StatusCode())
	}
	return nil
}

// SyncEnrollment is the post-response hook: best effort, failures only logged.
func (h *HubspotClient) SyncEnrollment(email, courseKey string, enrolled bool) {
	if err := h.SetUserEnrollment(email, courseKey, enrolled); err != nil {
		log.Printf("HubSpot enrollment sync failed for %s (%s): %v", email, courseKey, err)
	}
}

// SyncCompletion is the post-response completion hook.
func (h *HubspotClient) SyncCompletion(email, courseKey string) {
	if err := h.SetUserCourseCompletion(email, courseKey); err != nil {
		log.Printf("HubSpot completion sync failed for %s (%s): %v", email, courseKey, err)
	}
}
