package monitor

import (
	"context"

	"github.com/hitoshi/stockwatch/internal/model"
)

// PageFetcher はページ取得のインターフェース。
// fetcher.Fetcherを抽象化してテスタビリティを向上させる。
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, statusCode int, err error)
}

// Extractor はHTML抽出のインターフェース。
type Extractor interface {
	Extract(body []byte) (model.Extraction, error)
}

// Checker は1リンク分の取得と抽出を合成するProductChecker。
// サイクル実行と登録時の初回プローブの両方から使用される。
type Checker struct {
	fetcher   PageFetcher
	extractor Extractor
}

// NewChecker はCheckerの新しいインスタンスを生成する。
func NewChecker(fetcher PageFetcher, extractor Extractor) *Checker {
	return &Checker{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// Check は指定URLのページを1回取得し、商品シグナルを抽出する。
// 取得失敗（model.FetchError）とパース失敗はそのままエラーとして返し、
// 呼び出し元が「シグナルなし」として扱えるようにする。
func (c *Checker) Check(ctx context.Context, url string) (model.Extraction, error) {
	body, _, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return model.Extraction{}, err
	}

	return c.extractor.Extract(body)
}
