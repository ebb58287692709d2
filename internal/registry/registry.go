// Package registry は監視リンクの永続キー付きストアを提供する。
// ストアの実体は1枚のJSONファイル（URL→エントリのマッピング）で、
// 変更のたびに全体を書き直す。追記ログではない。
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hitoshi/stockwatch/internal/model"
)

// Registry は監視リンクのインメモリ状態とファイル永続化を管理する。
// キーは正規化済みURLのみであり、登録順を保持する。
//
// 並行性の契約: マップ構造の変更はミューテックスで保護するが、
// エントリのフィールド更新（スナップショット上書き）は
// 唯一のサイクル実行者だけが行う前提である（同時サイクルは外部で防止する）。
type Registry struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	links map[string]*model.MonitoredLink
	order []string // 登録順のURLリスト。再登録は元の位置を維持する。
}

// NewRegistry はRegistryの新しいインスタンスを生成する。
// pathは永続化先のJSONファイルパス。
func NewRegistry(path string, logger *slog.Logger) *Registry {
	return &Registry{
		path:   path,
		logger: logger,
		links:  make(map[string]*model.MonitoredLink),
		order:  nil,
	}
}

// Load は永続化ファイルからエントリを読み込む。
// ファイルが存在しない場合は空の状態で正常に開始する。
// パースできないファイルはエラーを返す。黙って空で上書き保存すると
// 既存の登録を失うため、呼び出し元で起動を中断させる。
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("レジストリファイルの読み込みに失敗しました: %w", err)
	}

	links, order, err := decodeLinks(data)
	if err != nil {
		return fmt.Errorf("レジストリファイルのパースに失敗しました: %s: %w", r.path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = links
	r.order = order

	r.logger.Info("レジストリを読み込みました",
		slog.String("path", r.path),
		slog.Int("link_count", len(links)),
	)
	return nil
}

// Save は現在の全エントリをファイルへ書き出す。
// 一時ファイルへの書き込みとリネームで行い、途中失敗で既存ファイルを壊さない。
// 失敗はmodel.PersistenceErrorとして返す（呼び出し元は非致命として扱う）。
func (r *Registry) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *Registry) saveLocked() error {
	data, err := encodeLinks(r.order, r.links)
	if err != nil {
		return model.NewPersistenceError(r.path, err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return model.NewPersistenceError(r.path, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return model.NewPersistenceError(r.path, err)
	}
	return nil
}

// Put はエントリを登録または上書きし、直ちに永続化する。
// 同一URLの再登録は既存エントリを丸ごと置き換え、重複は作らない。
// 返るエラーは永続化失敗のみで、メモリ上の反映は常に成功している。
func (r *Registry) Put(link *model.MonitoredLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.URL]; !exists {
		r.order = append(r.order, link.URL)
	}
	r.links[link.URL] = link

	return r.saveLocked()
}

// Remove は正規化済みURLの完全一致でエントリを削除し、直ちに永続化する。
// 存在しない場合はmodel.ErrLinkNotFoundを返し、状態を変更しない。
// 削除後の永続化失敗はmodel.PersistenceErrorとして返る（削除自体は反映済み）。
func (r *Registry) Remove(url string) (*model.MonitoredLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.links[url]
	if !exists {
		return nil, model.ErrLinkNotFound
	}

	delete(r.links, url)
	for i, u := range r.order {
		if u == url {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return link, r.saveLocked()
}

// RemoveAll は全エントリを無条件に削除し、削除件数を返す。
func (r *Registry) RemoveAll() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.links)
	r.links = make(map[string]*model.MonitoredLink)
	r.order = nil

	return count, r.saveLocked()
}

// List は全エントリを登録順で返す。
func (r *Registry) List() []*model.MonitoredLink {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.MonitoredLink, 0, len(r.order))
	for _, url := range r.order {
		result = append(result, r.links[url])
	}
	return result
}

// Get は正規化済みURLでエントリを取得する。
func (r *Registry) Get(url string) (*model.MonitoredLink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[url]
	return link, ok
}

// FindByID はリンク識別子（URLのSHA-256）でエントリを取得する。
func (r *Registry) FindByID(id string) (*model.MonitoredLink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, url := range r.order {
		if model.LinkID(url) == id {
			return r.links[url], true
		}
	}
	return nil, false
}

// Len は登録エントリ数を返す。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links)
}

// Path は永続化先のファイルパスを返す。
func (r *Registry) Path() string {
	return filepath.Clean(r.path)
}

// encodeLinks は登録順を保ったままURL→エントリのJSONオブジェクトを生成する。
// encoding/jsonのマップはキーをソートしてしまうため、手組みで順序を制御する。
func encodeLinks(order []string, links map[string]*model.MonitoredLink) ([]byte, error) {
	if len(order) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, url := range order {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")

		key, err := json.Marshal(url)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		entry, err := json.MarshalIndent(links[url], "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// decodeLinks はJSONオブジェクトをファイル内の出現順を保って読み込む。
// json.Unmarshalはオブジェクトのキー順を保持しないため、トークンストリームで処理する。
func decodeLinks(data []byte) (map[string]*model.MonitoredLink, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("トップレベルがJSONオブジェクトではありません")
	}

	links := make(map[string]*model.MonitoredLink)
	var order []string

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("オブジェクトキーが文字列ではありません: %v", keyTok)
		}

		var link model.MonitoredLink
		if err := dec.Decode(&link); err != nil {
			return nil, nil, fmt.Errorf("エントリのデコードに失敗しました (%s): %w", key, err)
		}
		if link.URL == "" {
			link.URL = key
		}

		if _, exists := links[key]; !exists {
			order = append(order, key)
		}
		links[key] = &link
	}

	return links, order, nil
}
