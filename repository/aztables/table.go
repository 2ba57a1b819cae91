package aztables

import (
	"context"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Table is the slice of the table client the gateway depends on.
type Table interface {
	List(ctx context.Context, partition string) ([][]byte, error)
	// Get returns nil without error when the entity does not exist.
	Get(ctx context.Context, partition, row string) ([]byte, error)
	Submit(ctx context.Context, actions []aztables.TransactionAction) error
	// Delete ignores entities that are already gone.
	Delete(ctx context.Context, partition, row string) error
	Ping(ctx context.Context) error
}

type clientTable struct {
	client *aztables.Client
}

// WrapClient adapts an SDK table client.
func WrapClient(client *aztables.Client) Table {
	return &clientTable{client: client}
}

func (t *clientTable) List(ctx context.Context, partition string) ([][]byte, error) {
	filter := "PartitionKey eq '" + partition + "'"
	pager := t.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	var out [][]byte
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Entities...)
	}
	return out, nil
}

func (t *clientTable) Get(ctx context.Context, partition, row string) ([]byte, error) {
	resp, err := t.client.GetEntity(ctx, partition, row, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Value, nil
}

func (t *clientTable) Submit(ctx context.Context, actions []aztables.TransactionAction) error {
	_, err := t.client.SubmitTransaction(ctx, actions, nil)
	return err
}

func (t *clientTable) Delete(ctx context.Context, partition, row string) error {
	_, err := t.client.DeleteEntity(ctx, partition, row, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (t *clientTable) Ping(ctx context.Context) error {
	top := int32(1)
	pager := t.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Top: &top})
	if !pager.More() {
		return nil
	}
	_, err := pager.NextPage(ctx)
	return err
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
