package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/initify/identity-context/internal/falcon"
)

// LinkedAccountsQuery selects accounts bound to one entity through a
// LINKED_ACCOUNT association. Only the first page of 100 entities is read.
const LinkedAccountsQuery = `query ($entityId: UUID!) {
  entities(associationQuery: {bindingTypes: [LINKED_ACCOUNT], entityQuery: {entityIds: [$entityId]}}, first: 100) {
    nodes {
      entityId
      accounts {
        ... on ActiveDirectoryAccountDescriptor {
          objectSid
          domain
        }
      }
    }
  }
}
`

// GraphQLClient executes one GraphQL call against the identity graph.
type GraphQLClient interface {
	GraphQL(ctx context.Context, query string, variables map[string]any) (*falcon.Response, error)
}

// Resolver maps the linked-account graph of an entity to flat records.
type Resolver struct {
	client GraphQLClient
	logger *zap.Logger
}

func NewResolver(client GraphQLClient, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, logger: logger}
}

type linkedAccountsData struct {
	Entities *struct {
		Nodes *[]GraphNode `json:"nodes"`
	} `json:"entities"`
}

// Resolve issues the linked-account query for entityID. Every returned error
// is an *Error.
func (r *Resolver) Resolve(ctx context.Context, entityID string) (*ResponseBody, error) {
	log := r.logger.With(zap.String("entity_id", entityID))

	// The id is not checked here; a blank or malformed one is rejected upstream.
	resp, err := r.client.GraphQL(ctx, LinkedAccountsQuery, map[string]any{"entityId": entityID})
	if err != nil {
		log.Error("linked accounts query failed", zap.Error(err))
		return nil, InternalError(err)
	}
	if resp == nil {
		err := errors.New("no response from graph client")
		log.Error("linked accounts query failed", zap.Error(err))
		return nil, InternalError(err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(resp.Body.Errors) == 0 {
			err := fmt.Errorf("upstream status %d with no errors reported", resp.StatusCode)
			log.Error("linked accounts query failed", zap.Error(err))
			return nil, InternalError(err)
		}
		msg := resp.Body.Errors[0].Message
		log.Warn("linked accounts query rejected", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return nil, UpstreamError(resp.StatusCode, msg)
	}

	nodes, err := decodeNodes(resp.Body)
	if err != nil {
		log.Error("linked accounts response malformed", zap.Error(err))
		return nil, InternalError(err)
	}

	body := &ResponseBody{LinkedEntities: []LinkedEntity{}}
	for _, node := range nodes {
		for _, account := range *node.Accounts {
			body.LinkedEntities = append(body.LinkedEntities, LinkedEntity{
				EntitySID: account.ObjectSID,
				EntityID:  node.EntityID,
				Domain:    account.Domain,
			})
		}
	}
	log.Debug("linked accounts resolved", zap.Int("nodes", len(nodes)), zap.Int("accounts", len(body.LinkedEntities)))
	return body, nil
}

// decodeNodes extracts data.entities.nodes, rejecting any missing level.
func decodeNodes(body falcon.ResponseBody) ([]GraphNode, error) {
	raw := bytes.TrimSpace(body.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if len(body.Errors) > 0 {
			return nil, fmt.Errorf("response has no data: %s", body.Errors[0].Message)
		}
		return nil, errors.New("response has no data")
	}
	var data linkedAccountsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if data.Entities == nil {
		return nil, errors.New("response has no data.entities")
	}
	if data.Entities.Nodes == nil {
		return nil, errors.New("response has no data.entities.nodes")
	}
	nodes := *data.Entities.Nodes
	for i, n := range nodes {
		if n.Accounts == nil {
			return nil, fmt.Errorf("node %d (%s) has no accounts", i, n.EntityID)
		}
		for j, a := range *n.Accounts {
			if a == nil {
				return nil, fmt.Errorf("node %d (%s) account %d is null", i, n.EntityID, j)
			}
		}
	}
	return nodes, nil
}
