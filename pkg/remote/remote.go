package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const updatedBy = "moveplan"

var (
	ErrNotConfigured = errors.New("remote database is not configured")
	ErrInvalidKey    = errors.New("collection and id are required")
)

// Client talks to a hosted document database.
type Client interface {
	Save(ctx context.Context, collection, id string, data json.RawMessage) error
	Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error)
}

// Unconfigured is the Client used when no remote project is set up.
type Unconfigured struct{}

func (Unconfigured) Save(context.Context, string, string, json.RawMessage) error {
	return ErrNotConfigured
}

func (Unconfigured) Get(context.Context, string, string) (json.RawMessage, bool, error) {
	return nil, false, ErrNotConfigured
}

// Result reports where a document was read from or written to.
type Result struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Online  bool            `json:"online"`
}

// Database writes through the remote client and falls back to the local
// store under "<collection>_<id>" whenever the client fails. Client failures
// never reach the caller.
type Database struct {
	client  Client
	storage storage.Service
	clock   utils.Clock
}

func NewDatabase(client Client, storage storage.Service, clock utils.Clock) *Database {
	if client == nil {
		client = Unconfigured{}
	}
	return &Database{client: client, storage: storage, clock: clock}
}

func LocalKey(collection, id string) string {
	return collection + "_" + id
}

func (d *Database) SaveData(ctx context.Context, collection, id string, data json.RawMessage) (Result, error) {
	if collection == "" || id == "" {
		return Result{}, ErrInvalidKey
	}
	stamped, err := d.stamp(data)
	if err != nil {
		return Result{}, err
	}

	if err := d.client.Save(ctx, collection, id, stamped); err == nil {
		return Result{Success: true, Online: true}, nil
	} else if !errors.Is(err, ErrNotConfigured) {
		log.Warnf("remote save of %s/%s failed, keeping it locally: %v", collection, id, err)
	}

	if _, err := d.storage.Save(ctx, LocalKey(collection, id), stamped); err != nil {
		log.Errorf("local save of %s/%s failed: %v", collection, id, err)
		return Result{Success: false, Online: false}, nil
	}
	return Result{Success: true, Online: false}, nil
}

func (d *Database) GetData(ctx context.Context, collection, id string) (Result, error) {
	if collection == "" || id == "" {
		return Result{}, ErrInvalidKey
	}

	data, found, err := d.client.Get(ctx, collection, id)
	if err == nil {
		return Result{Data: data, Success: found, Online: true}, nil
	}
	if !errors.Is(err, ErrNotConfigured) {
		log.Warnf("remote read of %s/%s failed, reading it locally: %v", collection, id, err)
	}

	envelope, err := d.storage.Load(ctx, LocalKey(collection, id))
	if err != nil {
		log.Errorf("local read of %s/%s failed: %v", collection, id, err)
		return Result{}, nil
	}
	if envelope == nil || !envelope.HasPayload() {
		return Result{}, nil
	}
	return Result{Data: envelope.Payload, Success: true}, nil
}

// stamp adds lastUpdated and updatedBy to JSON objects; other values pass as is.
func (d *Database) stamp(data json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return data, nil
	}
	fields["lastUpdated"] = d.clock.Now()
	fields["updatedBy"] = updatedBy
	return json.Marshal(fields)
}
