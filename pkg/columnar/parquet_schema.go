package columnar

import (
	"github.com/parquet-go/parquet-go"

	"github.com/striemhq/striem/pkg/schema"
)

// BuildSchema turns a parsed schema.Class into the parquet-go schema the
// writer opens its encoder with. Every schema file is translated once, at
// startup, and reused for the lifetime of the process.
func BuildSchema(class *schema.Class) *parquet.Schema {
	return parquet.NewSchema(class.Name, buildGroup(class.Fields))
}

func buildGroup(fields []schema.Field) parquet.Group {
	g := make(parquet.Group, len(fields))
	for _, f := range fields {
		g[f.Name] = buildNode(f)
	}
	return g
}

func buildNode(f schema.Field) parquet.Node {
	var node parquet.Node
	switch f.Kind {
	case schema.KindInt32:
		node = parquet.Leaf(parquet.Int32Type)
	case schema.KindInt64:
		node = parquet.Leaf(parquet.Int64Type)
	case schema.KindFloat64:
		node = parquet.Leaf(parquet.DoubleType)
	case schema.KindBool:
		node = parquet.Leaf(parquet.BooleanType)
	case schema.KindString:
		node = parquet.String()
	case schema.KindBytes:
		node = parquet.Leaf(parquet.ByteArrayType)
	case schema.KindTimestamp:
		node = parquet.Timestamp(parquet.Millisecond)
	case schema.KindStruct:
		node = buildGroup(f.Children)
	case schema.KindList:
		node = parquet.List(buildNode(*f.Elem))
	}

	if f.Nullable {
		node = parquet.Optional(node)
	}
	return node
}
