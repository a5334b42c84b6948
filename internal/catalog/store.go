package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/John-Robertt/MCAT/internal/domain"
	"github.com/John-Robertt/MCAT/internal/infra/fsx"
)

// Store 持有完整的内存集合，并负责与单个 JSON 目录文件的读写。
//
// 不变量（实现必须遵守）：
// - 集合顺序 = 插入顺序 = 落盘顺序；删除不重排
// - 每次成功变更后整文件重写（原子 temp+rename）；只读查询不触盘
// - 单用户单进程契约：Store 不做并发保护
//
// 说明：变更已生效但落盘失败时，内存与磁盘允许暂时分叉，下次成功落盘时收敛。
type Store struct {
	path string
	recs []domain.Record
}

// recordJSON 是目录文件中一条记录的固定形态：恰好四个字段，字段名不可变。
// ID 只在内存存在，永不出现在文件里。
type recordJSON struct {
	Title    string   `json:"title"`
	Director string   `json:"director"`
	Year     int      `json:"year"`
	Genres   []string `json:"genres"`
}

// Open 从 path 加载目录文件并构造 Store。
//
// - 文件不存在：空集合（不是错误）
// - 文件存在但不是合法的记录数组：*domain.FormatError（致命）
func Open(path string) (*Store, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return nil, fmt.Errorf("目录文件路径不能为空")
	}

	s := &Store{path: path}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	var rows []recordJSON
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, &domain.FormatError{Path: path, Err: err}
	}

	s.recs = make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		s.recs = append(s.recs, domain.NewRecord(r.Title, r.Director, r.Year, r.Genres))
	}
	return s, nil
}

// Path 返回目录文件路径（clean 后）。
func (s *Store) Path() string { return s.path }

// Dir 返回目录文件所在目录（cache/、report.json 的根）。
func (s *Store) Dir() string { return filepath.Dir(s.path) }

// save 把当前集合按当前顺序整体重写到目录文件。
// genres 为空时必须写出 []（而不是 null）：字段形态是对外接口的一部分。
func (s *Store) save() error {
	rows := make([]recordJSON, 0, len(s.recs))
	for _, r := range s.recs {
		g := r.Genres
		if g == nil {
			g = []string{}
		}
		rows = append(rows, recordJSON{
			Title:    r.Title,
			Director: r.Director,
			Year:     r.Year,
			Genres:   g,
		})
	}

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(s.path), filepath.Base(s.path), b)
}

// All 返回全部记录（集合顺序；副本，调用方可随意修改）。
func (s *Store) All() []domain.Record {
	out := make([]domain.Record, len(s.recs))
	copy(out, s.recs)
	for i := range out {
		out[i].Genres = append([]string(nil), out[i].Genres...)
	}
	return out
}

// Titles 返回全部标题（集合顺序；允许重复）。
func (s *Store) Titles() []string {
	out := make([]string, 0, len(s.recs))
	for _, r := range s.recs {
		out = append(out, r.Title)
	}
	return out
}

// Count 返回记录总数。
func (s *Store) Count() int { return len(s.recs) }

// Add 追加一条记录到集合末尾并落盘。
// 不做唯一性检查：同名记录允许共存（语义如此，不要“顺手”收紧）。
func (s *Store) Add(title, director string, year int, genres []string) (domain.Record, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Record{}, fmt.Errorf("标题不能为空")
	}
	rec := domain.NewRecord(title, director, year, genres)
	s.recs = append(s.recs, rec)
	if err := s.save(); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// FindByTitle 返回标题大小写不敏感匹配的首条记录。
// 未命中不是错误：返回 ok=false，调用方自行判断。
func (s *Store) FindByTitle(title string) (domain.Record, bool) {
	if i := s.indexByTitle(title); i >= 0 {
		return s.recs[i], true
	}
	return domain.Record{}, false
}

// FindByID 按内存 ID 精确定位（用于重名消歧）。
func (s *Store) FindByID(id uuid.UUID) (domain.Record, bool) {
	if i := s.indexByID(id); i >= 0 {
		return s.recs[i], true
	}
	return domain.Record{}, false
}

// Remove 删除标题首个匹配的记录并落盘，返回被删除的记录。
// 未命中返回 *domain.NotFoundError。
func (s *Store) Remove(title string) (domain.Record, error) {
	i := s.indexByTitle(title)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{Title: title}
	}
	return s.removeAt(i)
}

// RemoveByID 与 Remove 相同，但按内存 ID 定位。
func (s *Store) RemoveByID(id uuid.UUID) (domain.Record, error) {
	i := s.indexByID(id)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{Title: id.String()}
	}
	return s.removeAt(i)
}

func (s *Store) removeAt(i int) (domain.Record, error) {
	removed := s.recs[i]
	s.recs = append(s.recs[:i], s.recs[i+1:]...)
	if err := s.save(); err != nil {
		return domain.Record{}, err
	}
	return removed, nil
}

// Patch 描述一次更新：零值字段表示“不改”。
//
// 注意：空串/0/空列表与“未提供”不可区分，
// 因此 year=0 无法通过更新写入（只能在 Add 时写入）。
type Patch struct {
	Director string
	Year     int
	Genres   []string
}

// Update 对标题首个匹配的记录应用 patch 并落盘，返回更新后的记录。
// 未命中返回 *domain.NotFoundError。即使 patch 全空也会触发一次落盘。
func (s *Store) Update(title string, p Patch) (domain.Record, error) {
	i := s.indexByTitle(title)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{Title: title}
	}
	return s.updateAt(i, p)
}

// UpdateByID 与 Update 相同，但按内存 ID 定位。
func (s *Store) UpdateByID(id uuid.UUID, p Patch) (domain.Record, error) {
	i := s.indexByID(id)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{Title: id.String()}
	}
	return s.updateAt(i, p)
}

func (s *Store) updateAt(i int, p Patch) (domain.Record, error) {
	r := &s.recs[i]
	if p.Director != "" {
		r.Director = p.Director
	}
	if p.Year != 0 {
		r.Year = p.Year
	}
	if len(p.Genres) > 0 {
		r.Genres = append([]string(nil), p.Genres...)
	}
	if err := s.save(); err != nil {
		return domain.Record{}, err
	}
	return *r, nil
}

func (s *Store) indexByTitle(title string) int {
	for i := range s.recs {
		if domain.FoldEqual(s.recs[i].Title, title) {
			return i
		}
	}
	return -1
}

func (s *Store) indexByID(id uuid.UUID) int {
	for i := range s.recs {
		if s.recs[i].ID == id {
			return i
		}
	}
	return -1
}
