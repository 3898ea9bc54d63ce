package carriers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/utils"
)

const delhiveryName = "Delhivery"

// Delhivery implements Carrier against the Delhivery API. Authentication uses
// a "Token <key>" Authorization header on every call.
type Delhivery struct {
	cfg        config.CarrierConfig
	originPin  string
	httpClient *http.Client
	log        *zap.Logger
}

func NewDelhivery(cfg config.CarrierConfig, originPin string, log *zap.Logger) *Delhivery {
	return &Delhivery{
		cfg:       cfg,
		originPin: originPin,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (d *Delhivery) Name() string { return delhiveryName }

func (d *Delhivery) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Token %s", d.cfg.APIToken))
	req.Header.Set("Content-Type", "application/json")
}

// CheckServiceability queries the pincode directory. With no token configured
// it fails open so a missing credential never blocks checkout.
func (d *Delhivery) CheckServiceability(ctx context.Context, pincode string) ServiceabilityResult {
	if d.cfg.APIToken == "" {
		d.log.Warn("delhivery serviceability check skipped: no API token configured",
			zap.String("pincode", pincode))
		return ServiceabilityResult{
			Serviceable: true,
			Details:     "serviceability not verified: carrier token not configured",
		}
	}

	endpoint := fmt.Sprintf("%s/c/api/pin-codes/json/", d.cfg.BaseURL)
	query := url.Values{}
	query.Set("filter_codes", pincode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, query.Encode()), nil)
	if err != nil {
		return ServiceabilityResult{Error: err.Error()}
	}
	d.authorize(req)

	resp, err := d.httpClient.Do(req)
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
		DeliveryCodes []struct {
			PostalCode struct {
				Pin      json.Number `json:"pin"`
				Prepaid  string      `json:"pre_paid"`
				COD      string      `json:"cod"`
				City     string      `json:"city"`
				District string      `json:"district"`
				State    string      `json:"state_code"`
			} `json:"postal_code"`
		} `json:"delivery_codes"`
	}
	if err := json.Unmarshal(bodyBytes, &svcResp); err != nil {
		return ServiceabilityResult{Error: fmt.Sprintf("failed to decode serviceability response: %v", err)}
	}

	for _, dc := range svcResp.DeliveryCodes {
		pc := dc.PostalCode
		if pc.Pin.String() != pincode {
			continue
		}
		city := pc.City
		if city == "" {
			city = pc.District
		}
		return ServiceabilityResult{
			Serviceable:  strings.EqualFold(pc.Prepaid, "Y"),
			City:         city,
			State:        pc.State,
			CODAvailable: strings.EqualFold(pc.COD, "Y"),
		}
	}

	return ServiceabilityResult{
		Serviceable: false,
		Details:     fmt.Sprintf("pincode %s not found in Delhivery serviceable list", pincode),
	}
}

// delhiveryRate is the invoice/charges response row. The API returns either a
// bare object or a one-element array wrapping it.
type delhiveryRate struct {
	Status        string  `json:"status"`
	TotalAmount   float64 `json:"total_amount"`
	ChargedWeight float64 `json:"charged_weight"`
	Zone          string  `json:"zone"`
	FreightCharge float64 `json:"charge_freight"`
	CODCharge     float64 `json:"charge_cod"`
	FuelSurcharge float64 `json:"charge_fs"`
	OtherCharge   float64 `json:"charge_other"`
	GSTPercent    float64 `json:"gst_percent"`
}

func decodeDelhiveryRates(body []byte) (*delhiveryRate, error) {
	var rates []delhiveryRate
	if err := json.Unmarshal(body, &rates); err != nil {
		var single delhiveryRate
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("failed to decode rate response: %w", err)
		}
		rates = append(rates, single)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("empty rate response")
	}
	return &rates[0], nil
}

func (d *Delhivery) CalculateShipping(ctx context.Context, params RateParams) (*models.RateQuote, error) {
	if d.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	originPin := params.OriginPin
	if originPin == "" {
		originPin = d.originPin
	}

	mode := "S"
	if params.Mode == ModeExpress {
		mode = "E"
	}

	endpoint := fmt.Sprintf("%s/api/kinko/v1/invoice/charges/.json", d.cfg.BaseURL)
	query := url.Values{}
	query.Set("md", mode)
	query.Set("cgm", fmt.Sprintf("%.0f", params.WeightGrams))
	query.Set("o_pin", originPin)
	query.Set("d_pin", params.DestPin)
	query.Set("ss", "Delivered")
	if params.PaymentType == models.PaymentCOD {
		query.Set("pt", "COD")
		query.Set("cod", fmt.Sprintf("%.2f", params.Amount))
	} else {
		query.Set("pt", "Pre-paid")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, query.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	d.authorize(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Delhivery: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate check returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	rate, err := decodeDelhiveryRates(bodyBytes)
	if err != nil {
		return nil, err
	}

	base := rate.FreightCharge + rate.FuelSurcharge + rate.CODCharge + rate.OtherCharge
	gst := base * rate.GSTPercent / 100
	total := rate.TotalAmount
	if total == 0 {
		total = base + gst
	}
	weightUsed := rate.ChargedWeight
	if weightUsed == 0 {
		weightUsed = params.WeightGrams
	}

	return &models.RateQuote{
		Freight:     rate.FreightCharge,
		GST:         gst,
		TotalAmount: total,
		WeightUsed:  weightUsed,
	}, nil
}

// delhiveryCreateResponse mirrors the cmu/create.json payload. Remarks may be
// a string or an array of strings.
type delhiveryCreateResponse struct {
	Success  bool   `json:"success"`
	RMK      string `json:"rmk"`
	Packages []struct {
		Waybill string          `json:"waybill"`
		RefNum  string          `json:"refnum"`
		Status  string          `json:"status"`
		Remarks json.RawMessage `json:"remarks"`
	} `json:"packages"`
}

func remarksString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return strings.Join(arr, "; ")
	}
	return string(raw)
}

func (d *Delhivery) CreateOrder(ctx context.Context, shipReq ShipmentRequest) (*ShipmentResult, error) {
	if d.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	paymentMode := "Prepaid"
	codAmount := 0.0
	if shipReq.PaymentMethod == models.PaymentCOD {
		paymentMode = "COD"
		codAmount = shipReq.Total
	}

	var descParts []string
	for _, item := range shipReq.Items {
		descParts = append(descParts, fmt.Sprintf("%s (%d)", item.Name, item.Quantity))
	}

	shipmentData := map[string]interface{}{
		"shipments": []map[string]interface{}{
			{
				"name":          shipReq.Name,
				"add":           shipReq.Address.Street,
				"pin":           shipReq.Address.PostalCode,
				"city":          shipReq.Address.City,
				"state":         shipReq.Address.State,
				"country":       "India",
				"phone":         utils.NormalizePhone(shipReq.Phone),
				"order":         shipReq.OrderID,
				"payment_mode":  paymentMode,
				"cod_amount":    codAmount,
				"total_amount":  shipReq.Total,
				"products_desc": strings.Join(descParts, ", "),
				"quantity":      1,
				"weight":        shipReq.WeightGrams,
				"order_date":    time.Now().Format("2006-01-02 15:04:05"),
				"waybill":       "",
			},
		},
	}

	dataBytes, err := json.Marshal(shipmentData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipment data: %w", err)
	}

	formData := url.Values{}
	formData.Set("format", "json")
	formData.Set("data", string(dataBytes))
	formData.Set("pickup_location", d.cfg.PickupLocation)

	endpoint := fmt.Sprintf("%s/api/cmu/create.json", d.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Token %s", d.cfg.APIToken))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Delhivery: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order creation returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var createResp delhiveryCreateResponse
	if err := json.Unmarshal(bodyBytes, &createResp); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}

	// A 200 response can still carry a per-package failure; that is a
	// business failure, not a transport success.
	if !createResp.Success || len(createResp.Packages) == 0 {
		remarks := createResp.RMK
		if len(createResp.Packages) > 0 {
			if r := remarksString(createResp.Packages[0].Remarks); r != "" {
				remarks = r
			}
		}
		return nil, &BusinessError{
			Courier: delhiveryName,
			Kind:    ClassifyRemarks(remarks),
			Remarks: remarks,
		}
	}

	pkg := createResp.Packages[0]
	if strings.EqualFold(pkg.Status, "Fail") || pkg.Waybill == "" {
		remarks := remarksString(pkg.Remarks)
		if remarks == "" {
			remarks = createResp.RMK
		}
		return nil, &BusinessError{
			Courier: delhiveryName,
			Kind:    ClassifyRemarks(remarks),
			Remarks: remarks,
		}
	}

	d.log.Info("delhivery waybill allocated",
		zap.String("order_id", shipReq.OrderID),
		zap.String("waybill", pkg.Waybill))

	return &ShipmentResult{
		WaybillID:   pkg.Waybill,
		TrackingURL: fmt.Sprintf("https://www.delhivery.com/track/package/%s", pkg.Waybill),
		CourierName: delhiveryName,
	}, nil
}

func (d *Delhivery) TrackShipment(ctx context.Context, waybill string) (*TrackingResult, error) {
	if d.cfg.APIToken == "" {
		return nil, ErrMissingCredential
	}

	endpoint := fmt.Sprintf("%s/api/v1/packages/json/", d.cfg.BaseURL)
	query := url.Values{}
	query.Set("waybill", waybill)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, query.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	d.authorize(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Delhivery: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracking returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var trackResp struct {
		ShipmentData []struct {
			Shipment struct {
				Status struct {
					Status         string `json:"Status"`
					StatusLocation string `json:"StatusLocation"`
					StatusDateTime string `json:"StatusDateTime"`
					Instructions   string `json:"Instructions"`
				} `json:"Status"`
				Scans []struct {
					ScanDetail struct {
						Scan            string `json:"Scan"`
						ScanDateTime    string `json:"ScanDateTime"`
						ScannedLocation string `json:"ScannedLocation"`
						Instructions    string `json:"Instructions"`
					} `json:"ScanDetail"`
				} `json:"Scans"`
			} `json:"Shipment"`
		} `json:"ShipmentData"`
	}
	if err := json.Unmarshal(bodyBytes, &trackResp); err != nil {
		return nil, fmt.Errorf("failed to decode tracking response: %w", err)
	}
	if len(trackResp.ShipmentData) == 0 {
		return nil, fmt.Errorf("no tracking data found for waybill %s", waybill)
	}

	shipment := trackResp.ShipmentData[0].Shipment
	result := &TrackingResult{
		WaybillID: waybill,
		Status:    shipment.Status.Status,
		Location:  shipment.Status.StatusLocation,
	}
	for _, scan := range shipment.Scans {
		detail := scan.ScanDetail
		result.Events = append(result.Events, TrackingEvent{
			Status:    detail.Scan,
			Location:  detail.ScannedLocation,
			Remarks:   detail.Instructions,
			Timestamp: detail.ScanDateTime,
		})
	}
	return result, nil
}
