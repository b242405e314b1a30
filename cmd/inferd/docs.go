package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           inferd API
// @version         1.0
// @description     HTTP API for local model loading and inference serving.
//
// @contact.name   inferd maintainers
// @contact.url    https://github.com/your-org/inferd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
