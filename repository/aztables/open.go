package aztables

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/fastygo/taskboard/domain"
	tablestore "github.com/fastygo/taskboard/internal/infrastructure/aztables"
	"github.com/fastygo/taskboard/repository"
)

// TableName derives an alphanumeric table name such as "taskboardBoards".
func TableName(prefix string, kind domain.Kind) string {
	c := kind.Collection()
	return prefix + strings.ToUpper(c[:1]) + c[1:]
}

// Open binds one table per record kind on the service, creating missing tables when ensure is set.
func Open(ctx context.Context, svc *aztables.ServiceClient, prefix, partition string, ensure bool) (repository.Gateway, error) {
	if prefix == "" {
		prefix = DefaultPartition
	}
	tables := make(map[domain.Kind]Table, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		client := svc.NewClient(TableName(prefix, kind))
		if ensure {
			if err := tablestore.EnsureTable(ctx, client); err != nil {
				return nil, err
			}
		}
		tables[kind] = WrapClient(client)
	}
	return NewGateway(tables, partition)
}
