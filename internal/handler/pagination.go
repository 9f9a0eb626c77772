package handler

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/utils"
)

const maxPageSize = 100

// PageResponse 分页结果
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pager 页码分页，?page=N&page_size=M
type pager struct {
	number int
	size   int
}

func (h *Handler) pageParams(c *gin.Context) (pager, bool) {
	p := pager{number: 1, size: h.Config.PageSize}
	if p.size <= 0 {
		p.size = 10
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.size = min(n, maxPageSize)
		}
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		// 偏移量不能溢出
		if err != nil || n < 1 || n > math.MaxInt/p.size {
			utils.NotFound(c, "Invalid page.")
			return p, false
		}
		p.number = n
	}
	return p, true
}

func (p pager) page() repository.Page {
	return repository.Page{Offset: (p.number - 1) * p.size, Limit: p.size}
}

// respondPage 写出分页结果，页码超出范围时返回 404
func respondPage[T any](h *Handler, c *gin.Context, p pager, total int64, results []T) {
	if p.number > 1 && int64((p.number-1)*p.size) >= total {
		utils.NotFound(c, "Invalid page.")
		return
	}
	resp := PageResponse[T]{Count: total, Results: results}
	if int64(p.number*p.size) < total {
		resp.Next = h.pageURL(c, map[string]string{"page": strconv.Itoa(p.number + 1)})
	}
	if p.number > 1 {
		if p.number == 2 {
			resp.Previous = h.pageURL(c, map[string]string{"page": ""})
		} else {
			resp.Previous = h.pageURL(c, map[string]string{"page": strconv.Itoa(p.number - 1)})
		}
	}
	c.JSON(200, resp)
}

// limitOffset 用户列表使用 ?limit&offset
type limitOffset struct {
	limit  int
	offset int
}

func (h *Handler) limitOffsetParams(c *gin.Context) limitOffset {
	lo := limitOffset{limit: h.Config.PageSize}
	if lo.limit <= 0 {
		lo.limit = 10
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		lo.limit = min(n, maxPageSize)
	}
	if n, err := strconv.Atoi(c.Query("offset")); err == nil && n > 0 {
		lo.offset = n
	}
	return lo
}

func (lo limitOffset) page() repository.Page {
	return repository.Page{Offset: lo.offset, Limit: lo.limit}
}

func respondLimitOffset[T any](h *Handler, c *gin.Context, lo limitOffset, total int64, results []T) {
	resp := PageResponse[T]{Count: total, Results: results}
	if int64(lo.offset+lo.limit) < total {
		resp.Next = h.pageURL(c, map[string]string{
			"limit":  strconv.Itoa(lo.limit),
			"offset": strconv.Itoa(lo.offset + lo.limit),
		})
	}
	if lo.offset > 0 {
		prev := lo.offset - lo.limit
		params := map[string]string{"limit": strconv.Itoa(lo.limit), "offset": ""}
		if prev > 0 {
			params["offset"] = strconv.Itoa(prev)
		}
		resp.Previous = h.pageURL(c, params)
	}
	c.JSON(200, resp)
}

// pageURL 基于当前请求生成绝对地址，空值表示删除该参数
func (h *Handler) pageURL(c *gin.Context, params map[string]string) *string {
	q := c.Request.URL.Query()
	for k, v := range params {
		if v == "" {
			q.Del(k)
		} else {
			q.Set(k, v)
		}
	}
	u := url.URL{Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := strings.TrimRight(h.Config.SiteUrl, "/") + u.String()
	return &s
}
