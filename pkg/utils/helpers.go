package utils

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// CalculateMD5 computes the MD5 hash of a byte slice.
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// SplitExt 返回文件名的扩展名(含点)，规则与 Python os.path.splitext 一致：
// 只看最后一个 "/" 之后的部分，前导点不构成扩展名，例如 ".pdf" 和 "..pdf" 都没有扩展名
func SplitExt(filename string) string {
	base := filename[strings.LastIndex(filename, "/")+1:]
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || strings.TrimLeft(base[:dot], ".") == "" {
		return ""
	}
	return base[dot:]
}

// ConvertArrayToJSON 辅助函数: 将字符串数组转换为JSON，nil 与空数组都输出 []
func ConvertArrayToJSON(arr []string) datatypes.JSON {
	if len(arr) == 0 {
		return datatypes.JSON("[]")
	}

	jsonBytes, err := json.Marshal(arr)
	if err != nil {
		return datatypes.JSON("[]")
	}

	return datatypes.JSON(jsonBytes)
}
