package storage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
)

// TableSlot stores each key as one Azure Table entity in a single partition.
// The serialized value lives in the Payload column, so a value is limited to
// the 64 KiB string property size.
type TableSlot struct {
	table     *aztables.Client
	partition string
}

type slotEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Payload      string `json:"Payload"`
}

// NewTableSlot connects to tableName using connStr. All keys are written to
// the partition named after the board.
func NewTableSlot(connStr, tableName, partition string) (*TableSlot, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return NewTableSlotFromClient(svc.NewClient(tableName), partition), nil
}

func NewTableSlotFromClient(client *aztables.Client, partition string) *TableSlot {
	return &TableSlot{table: client, partition: partition}
}

// EnsureTable creates the backing table unless it already exists.
func (t *TableSlot) EnsureTable(ctx context.Context) error {
	if _, err := t.table.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (t *TableSlot) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.table.GetEntity(ctx, t.partition, key, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return decodeSlotEntity(resp.Value)
}

func (t *TableSlot) Put(ctx context.Context, key string, data []byte) error {
	payload, err := encodeSlotEntity(t.partition, key, data)
	if err != nil {
		return err
	}
	_, err = t.table.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func encodeSlotEntity(partition, key string, data []byte) ([]byte, error) {
	return sonic.Marshal(slotEntity{PartitionKey: partition, RowKey: key, Payload: string(data)})
}

func decodeSlotEntity(raw []byte) ([]byte, error) {
	var ent slotEntity
	if err := sonic.Unmarshal(raw, &ent); err != nil {
		return nil, err
	}
	if ent.Payload == "" {
		return nil, ErrSlotEmpty
	}
	return []byte(ent.Payload), nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
