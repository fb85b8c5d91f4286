package httpdto

// RegisterDeviceRequest is used for POST /devices
type RegisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// RevokeDeviceRequest is used for DELETE /devices
type RevokeDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}
