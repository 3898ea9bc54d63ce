package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/utils"
)

const xpressbeesName = "Xpressbees"

// Xpressbees implements Carrier against the Xpressbees shipment API.
// Authentication uses a "Bearer <token>" Authorization header.
type Xpressbees struct {
	cfg        config.CarrierConfig
	originPin  string
	httpClient *http.Client
	log        *zap.Logger
}

func NewXpressbees(cfg config.CarrierConfig, originPin string, log *zap.Logger) *Xpressbees {
	return &Xpressbees{
		cfg:       cfg,
		originPin: originPin,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (x *Xpressbees) Name() string { return xpressbeesName }

func (x *Xpressbees) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", x.cfg.APIToken))
	req.Header.Set("Content-Type", "application/json")
}

func (x *Xpressbees) CheckServiceability(ctx context.Context, pincode string) ServiceabilityResult {
	if x.cfg.APIToken == "" {
		x.log.Warn("xpressbees serviceability check skipped: no API token configured",
			zap.String("pincode", pincode))
		return ServiceabilityResult{
			Serviceable: true,
			Details:     "serviceability not verified: carrier token not configured",
		}
	}

	endpoint := fmt.Sprintf("%s/api/courier/serviceability", x.cfg.BaseURL)
	query := url.Values{}
	query.Set("pincode", pincode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, query.Encode()), nil)
	if err != nil {
		return ServiceabilityResult{Error: err.Error()}
	}
	x.authorize(req)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return ServiceabilityResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ServiceabilityResult{
			Error: fmt.Sprintf("serviceability check returned status %d: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var svcResp struct {
		Status bool `json:"status"`
		Data   []struct {
			City  string `json:"city"`
			State string `json:"state"`
			COD   bool   `json:"cod"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &svcResp); err != nil {
		return ServiceabilityResult{Error: fmt.Sprintf("failed to decode serviceability response: %v", err)}
	}

	if !svcResp.Status || len(svcResp.Data) == 0 {
		return ServiceabilityResult{
			Serviceable: false,
			Details:     fmt.Sprintf("pincode %s not serviceable by Xpressbees", pincode),
		}
	}

	entry := svcResp.Data[0]
	return ServiceabilityResult{
		Serviceable:  true,
		City:         entry.City,
		State:        entry.State,
		CODAvailable: entry.COD,
	}
}

func (x *Xpressbees) CalculateShipping(ctx context.Context, params RateParams) (*models.RateQuote, error) {
	if x.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	originPin := params.OriginPin
	if originPin == "" {
		originPin = x.originPin
	}

	payload := map[string]interface{}{
		"origin":       originPin,
		"destination":  params.DestPin,
		"weight":       params.WeightGrams,
		"service_type": string(params.Mode),
		"payment_type": string(params.PaymentType),
	}
	if params.PaymentType == models.PaymentCOD {
		payload["order_amount"] = params.Amount
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/courier/charges", x.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	x.authorize(req)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Xpressbees: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate check returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var rateResp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			FreightCharges   float64 `json:"freight_charges"`
			CODCharges       float64 `json:"cod_charges"`
			GST              float64 `json:"gst"`
			TotalCharges     float64 `json:"total_charges"`
			ChargeableWeight float64 `json:"chargeable_weight"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &rateResp); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if !rateResp.Status {
		return nil, fmt.Errorf("rate check rejected: %s", rateResp.Message)
	}

	weightUsed := rateResp.Data.ChargeableWeight
	if weightUsed == 0 {
		weightUsed = params.WeightGrams
	}

	return &models.RateQuote{
		Freight:     rateResp.Data.FreightCharges + rateResp.Data.CODCharges,
		GST:         rateResp.Data.GST,
		TotalAmount: rateResp.Data.TotalCharges,
		WeightUsed:  weightUsed,
	}, nil
}

func (x *Xpressbees) CreateOrder(ctx context.Context, shipReq ShipmentRequest) (*ShipmentResult, error) {
	if x.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	paymentType := "prepaid"
	codCharges := 0.0
	if shipReq.PaymentMethod == models.PaymentCOD {
		paymentType = "cod"
		codCharges = shipReq.Total
	}

	products := make([]map[string]interface{}, 0, len(shipReq.Items))
	for _, item := range shipReq.Items {
		products = append(products, map[string]interface{}{
			"name":  item.Name,
			"qty":   item.Quantity,
			"price": item.Price,
			"sku":   item.SKU,
		})
	}

	payload := map[string]interface{}{
		"order_number":       shipReq.OrderID,
		"payment_type":       paymentType,
		"order_amount":       shipReq.Total,
		"collectable_amount": codCharges,
		"package_weight":     shipReq.WeightGrams,
		"service_type":       string(shipReq.Mode),
		"pickup_location":    x.cfg.PickupLocation,
		"consignee": map[string]interface{}{
			"name":    shipReq.Name,
			"address": shipReq.Address.Street,
			"city":    shipReq.Address.City,
			"state":   shipReq.Address.State,
			"pincode": shipReq.Address.PostalCode,
			"phone":   utils.NormalizePhone(shipReq.Phone),
		},
		"order_items": products,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipment request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/shipments2", x.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	x.authorize(req)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Xpressbees: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order creation returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var createResp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AWBNumber   string `json:"awb_number"`
			CourierName string `json:"courier_name"`
			ShipmentID  int64  `json:"shipment_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &createResp); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}

	// status=false on a 200 is a business rejection, not a transport error.
	if !createResp.Status || createResp.Data.AWBNumber == "" {
		return nil, &BusinessError{
			Courier: xpressbeesName,
			Kind:    ClassifyRemarks(createResp.Message),
			Remarks: createResp.Message,
		}
	}

	x.log.Info("xpressbees waybill allocated",
		zap.String("order_id", shipReq.OrderID),
		zap.String("waybill", createResp.Data.AWBNumber))

	return &ShipmentResult{
		WaybillID:   createResp.Data.AWBNumber,
		TrackingURL: fmt.Sprintf("https://www.xpressbees.com/track?awb=%s", createResp.Data.AWBNumber),
		CourierName: xpressbeesName,
	}, nil
}

func (x *Xpressbees) TrackShipment(ctx context.Context, waybill string) (*TrackingResult, error) {
	if x.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	endpoint := fmt.Sprintf("%s/api/shipments2/track/%s", x.cfg.BaseURL, waybill)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	x.authorize(req)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Xpressbees: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracking returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var trackResp struct {
		Status bool `json:"status"`
		Data   struct {
			AWBNumber string `json:"awb_number"`
			Status    string `json:"status"`
			Location  string `json:"location"`
			History   []struct {
				Status    string `json:"status"`
				Location  string `json:"location"`
				Remarks   string `json:"remarks"`
				EventTime string `json:"event_time"`
			} `json:"history"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &trackResp); err != nil {
		return nil, fmt.Errorf("failed to decode tracking response: %w", err)
	}
	if !trackResp.Status {
		return nil, fmt.Errorf("no tracking data found for waybill %s", waybill)
	}

	result := &TrackingResult{
		WaybillID: waybill,
		Status:    trackResp.Data.Status,
		Location:  trackResp.Data.Location,
	}
	for _, h := range trackResp.Data.History {
		result.Events = append(result.Events, TrackingEvent{
			Status:    h.Status,
			Location:  h.Location,
			Remarks:   h.Remarks,
			Timestamp: h.EventTime,
		})
	}
	return result, nil
}
