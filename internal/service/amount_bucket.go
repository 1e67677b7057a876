package service

import (
	"github.com/shopspring/decimal"
)

// amountBucket 金额区间，下界包含、上界不包含；upper 为空表示无上界
type amountBucket struct {
	key   string
	lower decimal.Decimal
	upper *decimal.Decimal
}

func bucket(key string, lower, upper int64) amountBucket {
	b := amountBucket{key: key, lower: decimal.NewFromInt(lower)}
	if upper > 0 {
		u := decimal.NewFromInt(upper)
		b.upper = &u
	}
	return b
}

// amountBuckets 固定的金额筛选区间，顺序即筛选项展示顺序
var amountBuckets = []amountBucket{
	bucket("0-500", 0, 500),
	bucket("500-1000", 500, 1000),
	bucket("1000-5000", 1000, 5000),
	bucket("5000-10000", 5000, 10000),
	bucket("10000-25000", 10000, 25000),
	bucket("25000-50000", 25000, 50000),
	bucket("50000-100000", 50000, 100000),
	bucket("100000+", 100000, 0),
}

// amountBucketKey 返回金额所在区间的 key；负数不落入任何区间，返回空串
func amountBucketKey(amount decimal.Decimal) string {
	for _, b := range amountBuckets {
		if amount.LessThan(b.lower) {
			continue
		}
		if b.upper == nil || amount.LessThan(*b.upper) {
			return b.key
		}
	}
	return ""
}

// amountBucketRank 区间在 amountBuckets 中的位置，未知 key 排在最后
func amountBucketRank(key string) int {
	for i, b := range amountBuckets {
		if b.key == key {
			return i
		}
	}
	return len(amountBuckets)
}
