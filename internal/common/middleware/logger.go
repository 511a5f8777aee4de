package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// requestFormat: одна строка на запрос.
const requestFormat = "[${time}] ${status} - ${latency} ${method} ${path} from ${ip} | ${bytesSent}B | Content-Type: ${reqHeader:Content-Type}\n"

// ============================================================
// Logger Middleware
// ============================================================

// Logger возвращает настроенный middleware для логирования запросов
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     requestFormat,
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
