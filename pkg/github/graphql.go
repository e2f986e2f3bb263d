package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// graphqlEndpoint is the GitHub GraphQL API URL.
const graphqlEndpoint = "https://api.github.com/graphql"

// Draft conversion only exists in the GraphQL API.
const (
	mutationConvertToDraft = `mutation($id: ID!) { convertPullRequestToDraft(input: {pullRequestId: $id}) { clientMutationId } }`
	mutationMarkReady      = `mutation($id: ID!) { markPullRequestReadyForReview(input: {pullRequestId: $id}) { clientMutationId } }`
)

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphqlResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// setDraftViaGraphQL flips the draft flag through a GraphQL mutation, reusing
// the oauth2 transport of the REST client.
func (c *Client) setDraftViaGraphQL(ctx context.Context, nodeID string, draft bool) error {
	mutation := mutationMarkReady
	if draft {
		mutation = mutationConvertToDraft
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     mutation,
		Variables: map[string]string{"id": nodeID},
	})
	if err != nil {
		return fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call GraphQL API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GraphQL API returned status %d", errDraftToggleFailed, resp.StatusCode)
	}

	var out graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("%w: %s", errDraftToggleFailed, out.Errors[0].Message)
	}
	return nil
}
