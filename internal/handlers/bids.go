package handlers

import (
	"net/http"

	"tender-marketplace/internal/service"
	"tender-marketplace/models"

	"github.com/google/uuid"
)

type createBidRequest struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Description string            `json:"description" validate:"required,max=500"`
	TenderID    string            `json:"tenderId" validate:"required,uuid"`
	AuthorType  models.AuthorType `json:"authorType" validate:"required,oneof=Organization User"`
	AuthorID    string            `json:"authorId" validate:"required,uuid"`
}

type editBidRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	var req createBidRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.CreateBid(r.Context(), service.CreateBidInput{
		Name:        req.Name,
		Description: req.Description,
		TenderID:    uuid.MustParse(req.TenderID),
		AuthorType:  req.AuthorType,
		AuthorID:    uuid.MustParse(req.AuthorID),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) GetUserBidsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePaginationParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bids, err := h.Svc.ListUserBids(r.Context(), username, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetBidsForTenderHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePaginationParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bids, err := h.Svc.ListTenderBids(r.Context(), tenderID, username, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status, err := h.Svc.BidStatus(r.Context(), bidID, username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := requiredQuery(r, "status")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.UpdateBidStatus(r.Context(), bidID, models.BidStatus(status), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) EditBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req editBidRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.EditBid(r.Context(), bidID, username, service.BidPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) RollbackBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	version, err := versionParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.RollbackBid(r.Context(), bidID, version, username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

// SubmitBidDecisionHandler принимает решение ответственного (Approved/Rejected)
func (h *Handler) SubmitBidDecisionHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	decision, err := requiredQuery(r, "decision")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.SubmitDecision(r.Context(), bidID, models.Decision(decision), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

func (h *Handler) CreateBidFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuidParam(r, "bidId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	feedback, err := requiredQuery(r, "bidFeedback")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(feedback) > 1000 {
		h.writeError(w, r, invalid("bidFeedback is longer than 1000 characters"))
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bid, err := h.Svc.SubmitReview(r.Context(), bidID, feedback, username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

// GetBidReviewsHandler возвращает отзывы об авторе предложений по тендеру
func (h *Handler) GetBidReviewsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePaginationParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	author, err := requiredQuery(r, "authorUsername")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	requester, err := requiredQuery(r, "requesterUsername")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.Svc.ListReviews(r.Context(), tenderID, author, requester, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reviews)
}
