package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
}

func buildFindOptions(o *FindOptions) *options.FindOptions {
	opts := options.Find()
	if o == nil {
		return opts
	}
	if o.SortField != "" {
		dir := 1
		if o.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: o.SortField, Value: dir}})
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	return opts
}
