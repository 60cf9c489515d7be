package qamissync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/sirupsen/logrus"
)

// Client talks to the QAMIS (Frappe) REST API. Auth is config-selectable:
// an API token header when configured, basic credentials otherwise.
type Client struct {
	baseURL  string
	apiToken string
	username string
	password string
	http     *http.Client
	logger   *logrus.Logger
}

func NewClient(conf config.QamisConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(conf.APIURL, "/"),
		apiToken: conf.APIToken,
		username: conf.Username,
		password: conf.Password,
		http:     &http.Client{Timeout: conf.HTTPTimeout},
		logger:   config.GetLogger(),
	}
}

// FetchApprovedInspections lists inspections whose workflow state equals
// the approval marker. Rows without a name are dropped.
func (c *Client) FetchApprovedInspections(ctx context.Context) ([]InspectionSummary, error) {
	params := url.Values{}
	params.Set("filters", fmt.Sprintf(`[["workflow_state","=",%q]]`, models.WorkflowStateApproved))
	params.Set("fields", `["name","inspection_name","workflow_state","modified"]`)

	body, err := c.get(ctx, "/api/resource/Inspection", params)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, wrapAPIError(err, "malformed inspection list response")
	}
	if envelope.Data == nil {
		return nil, newAPIError(0, "no data field in inspection list response")
	}

	summaries := make([]InspectionSummary, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var summary InspectionSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			c.logger.WithFields(logrus.Fields{"module": "qamissync"}).
				Warnf("skipping malformed inspection summary: %v", err)
			continue
		}
		if strings.TrimSpace(summary.Name) == "" {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// FetchInspectionDetail loads one full inspection document, then each
// linked team document. A team fetch failure is logged and that team
// skipped; it never fails the whole detail fetch.
func (c *Client) FetchInspectionDetail(ctx context.Context, inspectionID string) (*InspectionDetail, error) {
	if strings.TrimSpace(inspectionID) == "" {
		return nil, newAPIError(0, "inspection id is empty")
	}

	body, err := c.get(ctx, "/api/resource/Inspection/"+url.PathEscape(inspectionID), nil)
	if err != nil {
		return nil, err
	}

	detail, err := decodeInspectionDetail(body, inspectionID)
	if err != nil {
		return nil, err
	}

	for _, link := range detail.TeamLinks {
		teamID := strings.TrimSpace(link.TeamName)
		if teamID == "" {
			teamID = strings.TrimSpace(link.Name)
		}
		if teamID == "" {
			continue
		}
		team, err := c.FetchTeamDetail(ctx, teamID)
		if err != nil {
			config.LogError(c.logger, "qamissync", "FetchInspectionDetail",
				"skipping team "+teamID+" of inspection "+inspectionID, nil, err)
			continue
		}
		detail.Teams = append(detail.Teams, *team)
	}
	return detail, nil
}

// FetchTeamDetail loads one Inspection Team document with its members
// and schools.
func (c *Client) FetchTeamDetail(ctx context.Context, teamID string) (*TeamDetail, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, newAPIError(0, "team id is empty")
	}

	body, err := c.get(ctx, "/api/resource/Inspection Team/"+url.PathEscape(teamID), nil)
	if err != nil {
		return nil, err
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, wrapAPIError(err, "malformed team response for %s", teamID)
	}
	if emptyData(envelope.Data) {
		return nil, newAPIError(http.StatusNotFound, "no team details found for %s", teamID)
	}

	var team TeamDetail
	if err := json.Unmarshal(envelope.Data, &team); err != nil {
		return nil, wrapAPIError(err, "malformed team data for %s", teamID)
	}
	if strings.TrimSpace(team.Name) == "" {
		team.Name = teamID
	}
	return &team, nil
}

// FetchSchoolIdentifications lists school profiles modified after the
// given cursor timestamp.
func (c *Client) FetchSchoolIdentifications(ctx context.Context, modifiedAfter string) ([]InspectionSummary, error) {
	params := url.Values{}
	params.Set("filters", fmt.Sprintf(`[["modified",">",%q]]`, modifiedAfter))
	params.Set("fields", `["name","modified"]`)

	body, err := c.get(ctx, "/api/resource/School Identification", params)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, wrapAPIError(err, "malformed school identification list response")
	}

	names := make([]InspectionSummary, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var row InspectionSummary
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		if strings.TrimSpace(row.Name) != "" {
			names = append(names, row)
		}
	}
	return names, nil
}

// FetchSchoolIdentificationDetail loads one school profile document.
func (c *Client) FetchSchoolIdentificationDetail(ctx context.Context, schoolName string) (*SchoolIdentificationRecord, error) {
	body, err := c.get(ctx, "/api/resource/School Identification/"+url.PathEscape(schoolName), nil)
	if err != nil {
		return nil, err
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, wrapAPIError(err, "malformed school identification response for %s", schoolName)
	}
	if emptyData(envelope.Data) {
		return nil, newAPIError(http.StatusNotFound, "no details found for school %s", schoolName)
	}

	var record SchoolIdentificationRecord
	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		return nil, wrapAPIError(err, "malformed school identification data for %s", schoolName)
	}
	if strings.TrimSpace(record.Name) == "" {
		return nil, newAPIError(0, "school identification %s is missing its name", schoolName)
	}
	return &record, nil
}

func decodeInspectionDetail(body []byte, inspectionID string) (*InspectionDetail, error) {
	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, wrapAPIError(err, "malformed inspection response for %s", inspectionID)
	}
	if emptyData(envelope.Data) {
		return nil, newAPIError(0, "no data field in inspection response for %s", inspectionID)
	}

	var detail InspectionDetail
	if err := json.Unmarshal(envelope.Data, &detail); err != nil {
		return nil, wrapAPIError(err, "malformed inspection data for %s", inspectionID)
	}

	// Fail closed on the fields every downstream step depends on.
	if strings.TrimSpace(detail.Name) == "" {
		return nil, newAPIError(0, "inspection %s is missing its name", inspectionID)
	}
	if strings.TrimSpace(detail.WorkflowState) == "" {
		return nil, newAPIError(0, "inspection %s is missing its workflow state", inspectionID)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, wrapAPIError(err, "build request for %s", path)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "token "+c.apiToken)
	} else {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapAPIError(err, "request %s failed", path)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, "%s returned %d: %s",
			path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		return nil, newAPIError(resp.StatusCode, "%s returned an empty body", path)
	}
	return body, nil
}
