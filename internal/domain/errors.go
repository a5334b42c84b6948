package domain

import (
	"errors"
	"fmt"
)

// NotFoundError 表示按标题（或 ID）没有命中任何记录。
// 可恢复：调用方提示“未找到”后继续运行即可。
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("未找到影片：%q", e.Title)
}

// IsNotFound 判断 err 是否为 NotFoundError。
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// FormatError 表示目录文件存在但无法按约定格式（扁平 JSON 数组）解析。
// 致命：Store 无法构造，进程不应带着它继续。文件不存在不走这里（视为空集合）。
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("目录文件格式错误：%q：%v", e.Path, e.Err)
	}
	return fmt.Sprintf("目录文件格式错误：%q", e.Path)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormat 判断 err 是否为 FormatError。
func IsFormat(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}
