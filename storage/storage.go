// Package storage keeps the record collections in Azure Table Storage, with
// an optional Redis read-through cache and Azure Queue change notifications.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"

	"github.com/ManiEids/vef2hop2/domain"
)

// Partition keys, one per collection.
const (
	TaskPartition     = "task"
	CategoryPartition = "category"
	TagPartition      = "tag"
	UserPartition     = "user"
)

const edmInt64 = "Edm.Int64"

var retryStatusCodes = []int{408, 429, 500, 502, 503, 504}

type tableClient interface {
	NewListEntitiesPager(o *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
	UpsertEntity(ctx context.Context, entity []byte, o *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey, rowKey string, o *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
}

// Tables names the table of each collection.
type Tables struct {
	Tasks      string
	Categories string
	Tags       string
	Users      string
}

// Storage implements the record store on Azure Table Storage.
type Storage struct {
	tasks      tableClient
	categories tableClient
	tags       tableClient
	users      tableClient
}

// New creates a Storage instance from the given connection string.
func New(connStr string, tables Tables) (*Storage, error) {
	svc, err := NewServiceClient(connStr)
	if err != nil {
		return nil, err
	}
	return &Storage{
		tasks:      svc.NewClient(tables.Tasks),
		categories: svc.NewClient(tables.Categories),
		tags:       svc.NewClient(tables.Tags),
		users:      svc.NewClient(tables.Users),
	}, nil
}

// NewServiceClient opens the table service with the SDK retry policy.
func NewServiceClient(connStr string) (*aztables.ServiceClient, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   retryStatusCodes,
			},
		},
	}
	return aztables.NewServiceClientFromConnectionString(connStr, &opts)
}

// recordEntity is the table row of any record: the record JSON in Data and
// the merge clock as a typed column.
type recordEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Data         string `json:"Data"`
	Modified     int64  `json:"Modified,string"`
	ModifiedType string `json:"Modified@odata.type"`
}

func listRecords[T any](ctx context.Context, table tableClient, partition string) ([]T, error) {
	filter := "PartitionKey eq '" + partition + "'"
	pager := table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []T{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			v, err := decodeRecord[T](raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func decodeRecord[T any](raw []byte) (T, error) {
	var (
		ent recordEntity
		v   T
	)
	if err := sonic.Unmarshal(raw, &ent); err != nil {
		return v, fmt.Errorf("decode entity: %w", err)
	}
	if err := sonic.UnmarshalString(ent.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", ent.PartitionKey, ent.RowKey, err)
	}
	return v, nil
}

func encodeRecord(partition, id string, modified int64, v any) ([]byte, error) {
	data, err := sonic.MarshalString(v)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(recordEntity{
		PartitionKey: partition,
		RowKey:       id,
		Data:         data,
		Modified:     modified,
		ModifiedType: edmInt64,
	})
}

func upsertRecord(ctx context.Context, table tableClient, partition, id string, modified int64, v any) error {
	payload, err := encodeRecord(partition, id, modified, v)
	if err == nil {
		_, err = table.UpsertEntity(ctx, payload, nil)
	}
	return err
}

func deleteRecord(ctx context.Context, table tableClient, partition, id string) error {
	_, err := table.DeleteEntity(ctx, partition, id, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return fmt.Errorf("%s %s: %w", partition, id, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Storage) AllTasks(ctx context.Context) ([]domain.Task, error) {
	return listRecords[domain.Task](ctx, s.tasks, TaskPartition)
}

func (s *Storage) PutTasks(ctx context.Context, tasks ...domain.Task) error {
	for _, t := range tasks {
		if err := upsertRecord(ctx, s.tasks, TaskPartition, t.ID, t.Modified, t); err != nil {
			return fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Storage) RemoveTask(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.tasks, TaskPartition, id)
}

func (s *Storage) AllCategories(ctx context.Context) ([]domain.Category, error) {
	return listRecords[domain.Category](ctx, s.categories, CategoryPartition)
}

func (s *Storage) PutCategory(ctx context.Context, c domain.Category) error {
	c.TaskCount = 0
	return upsertRecord(ctx, s.categories, CategoryPartition, c.ID, 0, c)
}

func (s *Storage) RemoveCategory(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.categories, CategoryPartition, id)
}

func (s *Storage) AllTags(ctx context.Context) ([]domain.Tag, error) {
	return listRecords[domain.Tag](ctx, s.tags, TagPartition)
}

func (s *Storage) PutTag(ctx context.Context, t domain.Tag) error {
	return upsertRecord(ctx, s.tags, TagPartition, t.ID, 0, t)
}

func (s *Storage) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	return listRecords[domain.Account](ctx, s.users, UserPartition)
}

func (s *Storage) PutAccount(ctx context.Context, a domain.Account) error {
	return upsertRecord(ctx, s.users, UserPartition, a.ID, 0, a)
}
